package format

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// 压缩格式共同的注意点:
// 压缩产物只有在 writer 的 Close 跑完 (trailer 落盘) 之后才是可解码的。
// 这正是原子句柄必须"先收尾编码器、再提交"的原因 —— 顺序反了，
// 读者就可能看到一个存在但解不开的产物。

// Gzip 压缩格式
var Gzip Format = gzipFormat{}

type gzipFormat struct{}

func (gzipFormat) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) {
	return &cascadeWriter{enc: gzip.NewWriter(w), inner: w}, nil
}

func (gzipFormat) WrapReader(r io.ReadCloser) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return &cascadeReader{dec: zr, closeDec: zr.Close, inner: r}, nil
}

// Zstd 压缩格式
var Zstd Format = zstdFormat{}

type zstdFormat struct{}

func (zstdFormat) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &cascadeWriter{enc: enc, inner: w}, nil
}

func (zstdFormat) WrapReader(r io.ReadCloser) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &cascadeReader{
		dec: dec,
		closeDec: func() error {
			dec.Close() // zstd.Decoder 的 Close 不返回错误
			return nil
		},
		inner: r,
	}, nil
}

// Lz4 压缩格式
var Lz4 Format = lz4Format{}

type lz4Format struct{}

func (lz4Format) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) {
	return &cascadeWriter{enc: lz4.NewWriter(w), inner: w}, nil
}

func (lz4Format) WrapReader(r io.ReadCloser) (io.ReadCloser, error) {
	// lz4.Reader 没有 Close，解码状态随 GC 回收
	return &cascadeReader{dec: lz4.NewReader(r), inner: r}, nil
}
