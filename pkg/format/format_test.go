package format

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// bufCloser 是测试用的内存 WriteCloser
type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

// roundTrip 把 payload 写过格式再读回来
func roundTrip(t interface{ Fatalf(string, ...any) }, f Format, payload []byte) []byte {
	buf := &bufCloser{}

	w, err := f.WrapWriter(buf)
	if err != nil {
		t.Fatalf("wrap writer: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	// 关键: 压缩产物只有 Close 之后才可解码
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := f.WrapReader(io.NopCloser(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatalf("wrap reader: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return got
}

var namedFormats = map[string]Format{
	"nop":  Nop,
	"utf8": UTF8,
	"gzip": Gzip,
	"zstd": Zstd,
	"lz4":  Lz4,
}

func TestRoundTripRepresentativePayloads(t *testing.T) {
	payloads := map[string][]byte{
		"ascii":   []byte("lol\n"),
		"utf8":    []byte("我éçф"),
		"binary":  {0x00, 0xf2, 0xf3, 0x0d, 0x0a, 0x66, 0x64},
		"empty":   {},
		"repeats": bytes.Repeat([]byte("abc123"), 10000),
	}

	for fname, f := range namedFormats {
		for pname, payload := range payloads {
			t.Run(fname+"/"+pname, func(t *testing.T) {
				got := roundTrip(t, f, payload)
				assert.Equal(t, payload, got)
			})
		}
	}
}

// 往返律的性质测试: 对任意字节序列 b, read(write(b)) == b
func TestRoundTripProperty(t *testing.T) {
	for fname, f := range namedFormats {
		t.Run(fname, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				payload := rapid.SliceOf(rapid.Byte()).Draw(rt, "payload")
				got := roundTrip(rt, f, payload)
				if !bytes.Equal(payload, got) {
					rt.Fatalf("round trip mismatch: wrote %d bytes, read %d bytes", len(payload), len(got))
				}
			})
		})
	}
}

func TestNopIsTransparent(t *testing.T) {
	// 恒等变换必须是可观察透明的: writer/reader 就是原对象
	buf := &bufCloser{}
	w, err := Nop.WrapWriter(buf)
	require.NoError(t, err)
	assert.Same(t, io.WriteCloser(buf), w)
}

func TestChainComposition(t *testing.T) {
	// Gzip 包裹 Lz4: 生产者字节先过 gzip，gzip 输出再过 lz4 落到 raw。
	// 所以 raw 的开头应该是 LZ4 帧魔数，而不是 gzip 头。
	chained := Chain(Gzip, Lz4)
	payload := []byte("chained payload 组合变换\n")

	buf := &bufCloser{}
	w, err := chained.WrapWriter(buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.True(t, buf.closed, "close must cascade all the way down to raw")

	raw := buf.Bytes()
	require.Greater(t, len(raw), 4)
	assert.Equal(t, []byte{0x04, 0x22, 0x4d, 0x18}, raw[:4], "outermost bytes on disk are the inner (lz4) frame")

	r, err := chained.WrapReader(io.NopCloser(bytes.NewReader(raw)))
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestChainIsAssociative(t *testing.T) {
	payload := bytes.Repeat([]byte("associativity"), 100)

	left := Chain(Chain(Gzip, Zstd), Lz4)
	right := Chain(Gzip, Chain(Zstd, Lz4))

	assert.Equal(t, roundTrip(t, left, payload), roundTrip(t, right, payload))

	// 两种结合方式产生完全相同的字节流
	encode := func(f Format) []byte {
		buf := &bufCloser{}
		w, err := f.WrapWriter(buf)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}
	assert.Equal(t, encode(left), encode(right))
}

func TestCorruptGzipSurfacesError(t *testing.T) {
	// 读到坏掉的压缩数据必须把错误抛给调用方，不能装作流结束了
	_, err := Gzip.WrapReader(io.NopCloser(bytes.NewReader([]byte("definitely not gzip"))))
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"none", "nop", "raw", "utf8", "text", "gzip", "gz", "zstd", "zst", "lz4", ""} {
		f, err := ByName(name)
		require.NoError(t, err, "format %q should resolve", name)
		assert.NotNil(t, f)
	}

	_, err := ByName("brotli")
	assert.Error(t, err)
}
