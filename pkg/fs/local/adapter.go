package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"atomvault/pkg/fs"

	"github.com/google/uuid"
)

// Adapter 实现了 fs.FileSystem 接口 (本地磁盘)
type Adapter struct{}

// NewAdapter 创建一个本地磁盘适配器。
// 它是无状态的，可以被任意多个 Target 共享。
func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Move 无条件移动: dst 已存在时直接被替换。
// os.Rename 在同卷上就是 rename(2)，对并发读者而言是原子的。
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("prepare parent dir: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("move %s: %w", src, fs.ErrNotFound)
		}
		return err
	}
	return nil
}

// RenameNoReplace 不覆盖式改名。
// 技巧: 用 link(2) + unlink 代替 rename。
// link 在 dst 已存在时返回 EEXIST，检查和落位是同一个系统调用，
// 不存在 stat-then-rename 的竞态窗口。
func (a *Adapter) RenameNoReplace(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("prepare parent dir: %w", err)
	}
	if err := os.Link(src, dst); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("rename %s -> %s: %w", src, dst, fs.ErrFileAlreadyExists)
		}
		if os.IsNotExist(err) {
			return fmt.Errorf("rename %s: %w", src, fs.ErrNotFound)
		}
		return err
	}
	// 链接已落位，源文件可以功成身退
	return os.Remove(src)
}

func (a *Adapter) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, fs.ErrNotFound)
		}
		return err
	}
	return nil
}

func (a *Adapter) MkdirAll(ctx context.Context, path string) error {
	return os.MkdirAll(path, 0755)
}

func (a *Adapter) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (a *Adapter) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("prepare parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// TempPath 在 final 同目录下分配临时路径 (保证同卷 rename)。
// UUID 提供熵: 并发写同一个 final 的句柄各自拿到私有的临时文件。
func (a *Adapter) TempPath(final string) string {
	return final + fs.TempInfix + uuid.NewString()
}

// Listdir 列出目录下的条目，过滤掉未提交的临时文件。
func (a *Adapter) Listdir(ctx context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("listdir %s: %w", path, fs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e.Name(), fs.TempInfix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
