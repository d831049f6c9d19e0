package format

import (
	"fmt"
	"io"
)

// Format 是可组合的字节流变换 (压缩、文本编码、恒等...)。
// 它只变换字节流，绝不触碰文件系统 —— 原子性完全是 pkg/target 的事。
//
// 契约:
//  1. WrapWriter 返回的 writer 在 Close 时必须先冲刷自己的尾部状态
//     (例如压缩器的 trailer)，再级联关闭 inner。
//     也就是说关闭顺序是从最外层开始解开的。
//  2. WrapReader 构造失败时必须自己负责关掉 r，调用方不再碰它。
//  3. Format 本身无状态，可以全局共享；有状态的是它每次 Wrap 产出的实例。
type Format interface {
	WrapReader(r io.ReadCloser) (io.ReadCloser, error)
	WrapWriter(w io.WriteCloser) (io.WriteCloser, error)
}

// Default 是全局默认格式: 原样透传。
// 这是一个共享的无状态值，不是可变全局状态。
var Default Format = Nop

// Nop 恒等变换。任意字节序列 (包括非法 UTF-8) 原样往返。
var Nop Format = nopFormat{}

type nopFormat struct{}

func (nopFormat) WrapReader(r io.ReadCloser) (io.ReadCloser, error) { return r, nil }
func (nopFormat) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) { return w, nil }

// UTF8 文本格式。
// Go 的 string 本来就是 UTF-8 字节序列，所以这里不需要像动态语言那样
// 做编解码转换 —— 它在字节层面等价于 Nop。
// 保留这个具名格式是为了让调用方显式声明"这是文本产物"的意图。
var UTF8 Format = utf8Format{}

type utf8Format struct{}

func (utf8Format) WrapReader(r io.ReadCloser) (io.ReadCloser, error) { return r, nil }
func (utf8Format) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) { return w, nil }

// Chain 组合两个格式: outer 包裹 inner。
// 写入方向: 生产者字节先进 outer，outer 的输出进 inner，inner 落到 raw。
//   combined.WrapWriter(raw) = outer.WrapWriter(inner.WrapWriter(raw))
// 关闭时 cascadeWriter 保证从最外层开始解开，
// 外层压缩器的 trailer 能冲进还开着的内层流。
// 组合满足结合律，且顺序敏感。
func Chain(outer, inner Format) Format {
	return chainFormat{outer: outer, inner: inner}
}

type chainFormat struct {
	outer, inner Format
}

func (c chainFormat) WrapWriter(raw io.WriteCloser) (io.WriteCloser, error) {
	w, err := c.inner.WrapWriter(raw)
	if err != nil {
		return nil, err
	}
	return c.outer.WrapWriter(w)
}

func (c chainFormat) WrapReader(raw io.ReadCloser) (io.ReadCloser, error) {
	r, err := c.inner.WrapReader(raw)
	if err != nil {
		return nil, err
	}
	return c.outer.WrapReader(r)
}

// ByName 按名字查找格式，供 CLI 的 --format 参数使用。
func ByName(name string) (Format, error) {
	switch name {
	case "", "none", "nop", "raw":
		return Nop, nil
	case "utf8", "text":
		return UTF8, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return Lz4, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want none|utf8|gzip|zstd|lz4)", name)
	}
}

// cascadeWriter 把编码器和它包裹的内层流绑在一起。
// Close 顺序: 先 enc (冲刷 trailer)，再 inner。第一个错误优先。
type cascadeWriter struct {
	enc   io.WriteCloser
	inner io.WriteCloser
}

func (w *cascadeWriter) Write(p []byte) (int, error) { return w.enc.Write(p) }

func (w *cascadeWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		// 编码器收尾失败: 不再关闭 inner。
		// 对写侧来说关闭最底层意味着"提交"，变换失败必须走丢弃路径，
		// 清理交给上层的 Discard。
		return err
	}
	return w.inner.Close()
}

// cascadeReader 同理。读侧没有 trailer 要冲刷，关闭只是释放资源。
type cascadeReader struct {
	dec      io.Reader
	closeDec func() error // 可以为 nil (解码器无需关闭)
	inner    io.ReadCloser
}

func (r *cascadeReader) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *cascadeReader) Close() error {
	var decErr error
	if r.closeDec != nil {
		decErr = r.closeDec()
	}
	innerErr := r.inner.Close()
	if decErr != nil {
		return decErr
	}
	return innerErr
}
