package target

import (
	"context"

	"atomvault/pkg/format"
	"atomvault/pkg/fs"
)

// Target 是产物句柄的最小抽象。
// 下游阶段判断"我的输入就绪了吗"只看一件事: 产物存在与否。
// 所以任何能回答 Exists 的东西 (文件、S3 对象、数据库标记行、redis key)
// 都可以参与管道调度。
type Target interface {
	Exists(ctx context.Context) (bool, error)
}

// FSTarget 是文件系统产物句柄:
// 绑定一个逻辑路径、一个 FileSystem 实现和一个可选的变换链。
// 构造之后不可变 —— 唯一会变的是产物的存在状态，而那完全委托给后端，
// 这里不缓存任何存在性标记。
//
// FSTarget 是纯值句柄: 不需要销毁，同一个路径可以反复重建。
type FSTarget struct {
	path   string
	fsys   fs.FileSystem
	format format.Format
}

// New 创建一个 FSTarget。
// fmts 可选 (至多一个)，缺省用 format.Default (恒等变换)。
func New(fsys fs.FileSystem, path string, fmts ...format.Format) *FSTarget {
	f := format.Default
	if len(fmts) > 0 && fmts[0] != nil {
		f = fmts[0]
	}
	return &FSTarget{path: path, fsys: fsys, format: f}
}

// Path 返回产物的逻辑路径 (FileSystem 命名空间内的不透明字符串)。
func (t *FSTarget) Path() string { return t.path }

// FS 返回这个 Target 绑定的存储后端。
func (t *FSTarget) FS() fs.FileSystem { return t.fsys }

// Exists 委托给后端的存在性检查，每次都实查，不缓存。
func (t *FSTarget) Exists(ctx context.Context) (bool, error) {
	return t.fsys.Exists(ctx, t.path)
}

// effective 选出本次打开生效的格式: 参数覆盖优先于 Target 存储的格式。
func (t *FSTarget) effective(override []format.Format) format.Format {
	if len(override) > 0 && override[0] != nil {
		return override[0]
	}
	return t.format
}

// OpenWrite 打开写入作用域。
// 流程: 向 FileSystem 要一个临时路径 → 构造原子写句柄 → 套上变换链。
// 调用方写完后必须走两条路之一:
//
//	w, err := t.OpenWrite(ctx)
//	if err != nil { ... }
//	defer w.Discard()          // 任何异常退出路径都只丢弃，绝不提交
//	_, err = w.Write(data)
//	...
//	return w.Close()           // 受控关闭 = 冲刷编码器 + 原子提交
//
// 在 Close 完整跑完之前，任何观察者的 Exists 都是 false；
// 跑完的那一刻原子地变成 true，没有中间窗口。
// 之前如果已有产物，覆盖发生在提交那一下 (rename)，而不是原地改写。
func (t *FSTarget) OpenWrite(ctx context.Context, override ...format.Format) (*Writer, error) {
	aw, err := newAtomicWriter(ctx, t.fsys, t.path)
	if err != nil {
		return nil, err
	}
	out, err := t.effective(override).WrapWriter(aw)
	if err != nil {
		aw.Discard()
		return nil, err
	}
	return &Writer{out: out, handle: aw}, nil
}

// OpenRead 打开读取作用域。
// 产物必须已存在，否则返回 fs.ErrNotFound。读侧没有原子性问题:
// 直接打开最终路径，套上变换链的 reader。
func (t *FSTarget) OpenRead(ctx context.Context, override ...format.Format) (*Reader, error) {
	raw, err := t.fsys.Open(ctx, t.path)
	if err != nil {
		return nil, err
	}
	in, err := t.effective(override).WrapReader(raw)
	if err != nil {
		// WrapReader 的契约: 构造失败时它自己负责关掉 raw
		return nil, err
	}
	return &Reader{in: in}, nil
}

// Touch 原子地发布一个空产物。
// 标记式工作流用它宣告"这一步完成了"。
func (t *FSTarget) Touch(ctx context.Context) error {
	w, err := t.OpenWrite(ctx, format.Nop)
	if err != nil {
		return err
	}
	defer w.Discard()
	return w.Close()
}
