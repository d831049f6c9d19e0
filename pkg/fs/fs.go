package fs

import (
	"context"
	"errors"
	"io"
)

// TempInfix 是临时文件的命名约定，所有后端的 TempPath 都嵌入这一段。
// Listdir 和列表层的忽略规则靠它识别尚未发布的产物。
const TempInfix = "-av-tmp-"

var (
	// ErrNotFound 路径不存在 (打开读取、Move 源缺失等场景)
	ErrNotFound = errors.New("path not found")

	// ErrFileAlreadyExists 专属于 RenameNoReplace:
	// 目标位置已经有东西了，拒绝覆盖。
	// 上层可以用它实现"不可抢占式发布"(non-clobbering publish)语义。
	ErrFileAlreadyExists = errors.New("destination already exists")
)

// FileSystem 定义了存储后端的能力集合 (Capability Set)。
// 实现可以是本地磁盘、S3/MinIO，或任何分布式文件系统。
// 核心层只依赖这份契约，从不依赖具体后端。
//
// 关于 Move 与 RenameNoReplace 的区别:
//   - Move 是无条件的: dst 已存在时直接覆盖 (last commit wins)
//   - RenameNoReplace 在 dst 已存在时必须返回 ErrFileAlreadyExists，
//     而不是静默覆盖。这是原子发布保证的基石原语。
type FileSystem interface {
	// Exists 检查路径是否存在。不允许缓存结果。
	Exists(ctx context.Context, path string) (bool, error)

	// Move 将 src 移动到 dst。允许覆盖已有的 dst。
	// 只在 src 缺失 (ErrNotFound) 或 dst 父目录不可写时失败。
	Move(ctx context.Context, src, dst string) error

	// RenameNoReplace 同 Move，但 dst 已存在时返回 ErrFileAlreadyExists。
	// 检查与改名必须是同一个原子动作，不能是 stat-then-rename。
	RenameNoReplace(ctx context.Context, src, dst string) error

	// Remove 删除一个路径。路径不存在时返回 ErrNotFound。
	Remove(ctx context.Context, path string) error

	// MkdirAll 确保目录存在 (含所有父级)。对象存储后端可以是 no-op。
	MkdirAll(ctx context.Context, path string) error

	// Open 打开一个已存在的路径用于顺序读取。
	// 路径不存在时返回 ErrNotFound。
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create 打开一个路径用于顺序写入，父级目录自动创建。
	// 注意: Create 本身没有任何原子性，原子发布协议由上层 (pkg/target) 负责。
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// TempPath 为 final 分配一个临时路径 (provisional path)。
	// 约束:
	//  1. 必须与 final 同卷/同命名空间，保证之后的 Move 是纯 rename 而非跨设备拷贝
	//  2. 必须带足够的熵，并发写同一个 final 的多个句柄永远不会撞到同一个临时路径
	//  3. 命名上不能被误认为已发布的产物
	// 这是一个纯路径计算，不触碰存储。
	TempPath(final string) string

	// Listdir 列出目录/前缀下的直接条目名。临时文件不出现在结果里。
	Listdir(ctx context.Context, path string) ([]string, error)
}
