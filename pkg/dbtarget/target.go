package dbtarget

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// Marker 是一次成功发布的标记行。
// 管道把"表 X 的第 N 批数据已写完"记成一行，下游的 Exists 只查这一行，
// 不用扫描业务表本身。UpdateID 由调用方构造，必须能唯一标识一次发布
// (通常是 任务名 + 分区/日期)。
type Marker struct {
	UpdateID    string    `gorm:"primaryKey;type:varchar(128)"`
	TargetTable string    `gorm:"index;type:varchar(128)"`
	Inserted    time.Time `gorm:"autoCreateTime"`
}

// TableName 固定标记表名，和业务表井水不犯河水
func (Marker) TableName() string {
	return "table_updates"
}

// Target 是数据库标记产物句柄，实现 target.Target。
// 和文件产物一样: 构造后不可变，存在状态完全委托给数据库，不缓存。
type Target struct {
	db       *DB
	table    string
	updateID string
}

func New(db *DB, table, updateID string) *Target {
	return &Target{db: db, table: table, updateID: updateID}
}

func (t *Target) UpdateID() string { return t.updateID }

// Exists 标记行在不在
func (t *Target) Exists(ctx context.Context) (bool, error) {
	var count int64
	err := t.db.GetConn().WithContext(ctx).
		Model(&Marker{}).
		Where("update_id = ?", t.updateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query marker: %w", err)
	}
	return count > 0, nil
}

// Touch 落下标记。
// 单行 INSERT 在事务意义上就是原子发布: 要么没有，要么完整。
// ON CONFLICT DO NOTHING 保证重复落标记是幂等的 (重跑任务不报错)。
func (t *Target) Touch(ctx context.Context) error {
	m := Marker{UpdateID: t.updateID, TargetTable: t.table}
	err := t.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("insert marker: %w", err)
	}
	return nil
}

// Remove 撤掉标记 (比如要强制重算某个分区)
func (t *Target) Remove(ctx context.Context) error {
	return t.db.GetConn().WithContext(ctx).
		Where("update_id = ?", t.updateID).
		Delete(&Marker{}).Error
}
