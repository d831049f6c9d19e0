package redistarget

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config 客户端配置
type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	Prefix   string        // Key 前缀，防止和别的业务冲突
	TTL      time.Duration // 0 表示标记永不过期
}

// Target 是 redis 标记产物句柄，实现 target.Target。
// 存在性 = 前缀 Key 在不在。适合"轻量完成标记"场景:
// 真正的数据落在别处，管道只需要一个毫秒级的就绪信号。
type Target struct {
	client   *redis.Client
	prefix   string
	updateID string
	ttl      time.Duration
}

// New 从连接字符串构造。Fail-fast: 连不上 redis 直接报错，
// 而不是等到第一次 Exists 才发现。
func New(cfg Config, updateID string) (*Target, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.Prefix, updateID, cfg.TTL), nil
}

// NewWithClient 复用现有客户端 (依赖注入 / 测试)
func NewWithClient(client *redis.Client, prefix, updateID string, ttl time.Duration) *Target {
	if prefix == "" {
		prefix = "av:done"
	}
	return &Target{client: client, prefix: prefix, updateID: updateID, ttl: ttl}
}

func (t *Target) key() string {
	return t.prefix + ":" + t.updateID
}

// Exists 标记在不在
func (t *Target) Exists(ctx context.Context) (bool, error) {
	n, err := t.client.Exists(ctx, t.key()).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// MarkDone 落下标记。SET 是单命令原子操作，重复标记幂等。
// 值存落标时间，方便人工排查"这个分区是什么时候算完的"。
func (t *Target) MarkDone(ctx context.Context) error {
	err := t.client.Set(ctx, t.key(), time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis mark done: %w", err)
	}
	return nil
}

// Remove 撤掉标记
func (t *Target) Remove(ctx context.Context) error {
	return t.client.Del(ctx, t.key()).Err()
}
