package target

import (
	"bufio"
	"io"
	"iter"
)

// Writer 是 OpenWrite 返回的作用域写入器。
// out 是变换链最外层，链的最底端是原子写句柄。
type Writer struct {
	out    io.WriteCloser
	handle *AtomicWriter
}

func (w *Writer) Write(p []byte) (int, error) { return w.out.Write(p) }

// WriteString 方便写文本行。
func (w *Writer) WriteString(s string) (int, error) { return w.out.Write([]byte(s)) }

// Close 是成功路径上的释放动作:
// 从最外层开始关闭变换链 (外层编码器把 trailer 冲进还开着的内层流)，
// 级联到最底层的原子句柄完成提交。
// 半路失败时句柄被丢弃，临时文件清掉，原始错误原样上抛。
func (w *Writer) Close() error {
	if err := w.out.Close(); err != nil {
		w.handle.Discard()
		return err
	}
	return nil
}

// Discard 是失败/放弃路径上的释放动作: 丢弃临时文件，最终路径不动。
// 成功 Close 之后调用是 no-op，所以可以无脑 defer。
func (w *Writer) Discard() { w.handle.Discard() }

// ProvisionalPath 暴露临时路径，主要给测试验证清理用。
func (w *Writer) ProvisionalPath() string { return w.handle.ProvisionalPath() }

// Reader 是 OpenRead 返回的作用域读取器。
type Reader struct {
	in    io.ReadCloser
	lined bool
	err   error
}

func (r *Reader) Read(p []byte) (int, error) { return r.in.Read(p) }

func (r *Reader) Close() error { return r.in.Close() }

// Lines 按行惰性迭代产物内容 (行尾换行符被剥掉)。
// 序列是有限的、一次性的: 迭代消耗底层流，不可重置；
// 想从头再读，重新 OpenRead 一次。
// 迭代自然结束后必须检查 Err(): 截断/损坏的压缩流在 Scanner
// 眼里就是提前 EOF，不查 Err 会把残缺产物当成完整序列。
func (r *Reader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if r.lined {
			// 流已经被消耗过了，没有东西可以重放
			return
		}
		r.lined = true
		sc := bufio.NewScanner(r.in)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
		r.err = sc.Err()
	}
}

// Err 返回 Lines 迭代终止的原因。
// 正常读到 EOF 是 nil；解码失败或单行超出缓冲上限时是对应错误。
// 调用方主动 break 不算终止，Err 保持 nil。
func (r *Reader) Err() error { return r.err }
