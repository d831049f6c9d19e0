package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atomvault/pkg/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	path := filepath.Join(t.TempDir(), "f.txt")

	exists, err := a.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	writeFile(t, path, "x")
	exists, err = a.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMoveOverwrites(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "sub", "dst.txt") // 父目录不存在，Move 要自己建

	writeFile(t, src, "new")
	require.NoError(t, a.Move(ctx, src, dst))

	exists, _ := a.Exists(ctx, src)
	assert.False(t, exists, "src should be gone after move")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// dst 已存在时无条件覆盖
	writeFile(t, src, "newer")
	require.NoError(t, a.Move(ctx, src, dst))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "newer", string(data))
}

func TestMoveMissingSource(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	dir := t.TempDir()

	err := a.Move(ctx, filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	assert.ErrorIs(t, err, fs.ErrNotFound)
}

func TestRenameNoReplace(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	// 第一次成功
	writeFile(t, src, "v1")
	require.NoError(t, a.RenameNoReplace(ctx, src, dst))

	exists, _ := a.Exists(ctx, src)
	assert.False(t, exists)
	exists, _ = a.Exists(ctx, dst)
	assert.True(t, exists)

	// 第二次: dst 被占，报 AlreadyExists，dst 内容不动
	writeFile(t, src, "v2")
	err := a.RenameNoReplace(ctx, src, dst)
	assert.ErrorIs(t, err, fs.ErrFileAlreadyExists)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	path := filepath.Join(t.TempDir(), "f.txt")

	assert.ErrorIs(t, a.Remove(ctx, path), fs.ErrNotFound)

	writeFile(t, path, "x")
	require.NoError(t, a.Remove(ctx, path))
	exists, _ := a.Exists(ctx, path)
	assert.False(t, exists)
}

func TestOpenNotFound(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()

	_, err := a.Open(ctx, filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, fs.ErrNotFound)
}

func TestCreateThenOpen(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	path := filepath.Join(t.TempDir(), "deep", "nested", "f.bin")

	w, err := a.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte{0x00, 0xff, 0x10})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := a.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, data)
}

func TestTempPath(t *testing.T) {
	a := NewAdapter()
	final := filepath.Join(t.TempDir(), "out", "artifact.dat")

	p1 := a.TempPath(final)
	p2 := a.TempPath(final)

	// 同目录 (同卷 rename 保证)
	assert.Equal(t, filepath.Dir(final), filepath.Dir(p1))
	// 命名约定可辨认
	assert.True(t, strings.Contains(filepath.Base(p1), fs.TempInfix))
	// 熵: 两次分配永不相同
	assert.NotEqual(t, p1, p2)
}

func TestListdirHidesProvisionalFiles(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.dat"), "x")
	writeFile(t, filepath.Join(dir, "b.dat"), "x")
	// 一个还没提交的临时文件
	writeFile(t, a.TempPath(filepath.Join(dir, "c.dat")), "partial")

	names, err := a.Listdir(ctx, dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.dat", "b.dat"}, names)

	_, err = a.Listdir(ctx, filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, fs.ErrNotFound)
}
