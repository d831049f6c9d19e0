package target

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"atomvault/pkg/fs"
)

// 原子写句柄的状态机: Open → {Committed | Discarded}，终态，单次使用。
// 离开 Open 的转移至多发生一次 (CAS 保证)，之后所有释放动作都是 no-op。
const (
	stateOpen int32 = iota
	stateCommitted
	stateDiscarded
)

// handleState 持有句柄的可变部分。
// 单独拆出来是为了 GC 兜底: runtime.AddCleanup 的回调不能引用句柄本身
// (否则句柄永远不会被回收)，所以回调通过这个共享对象做清理。
type handleState struct {
	fsys    fs.FileSystem
	tmpPath string
	raw     io.WriteCloser
	phase   atomic.Int32
}

// discard 尽力而为地清理临时文件。
// 清理失败 (比如文件已经没了) 被吞掉: discard 本来就是错误路径上的兜底，
// 它绝不能遮盖原始错误。
func (s *handleState) discard(ctx context.Context) {
	if !s.phase.CompareAndSwap(stateOpen, stateDiscarded) {
		return // 已经提交或已经丢弃过了
	}
	_ = s.raw.Close()
	if err := s.fsys.Remove(ctx, s.tmpPath); err != nil {
		// 临时文件可能已经不在了，这不算错
		fmt.Fprintf(os.Stderr, "WARN: discard %s: %v\n", s.tmpPath, err)
	}
}

// AtomicWriter 是原子写句柄:
// 绑定一个未来的最终路径，所有字节先写进同命名空间的临时路径；
// Close (受控关闭) 时以一次 rename 落位发布，其它任何终止方式都只会丢弃临时文件。
//
// 观察者视角: 最终路径要么不存在，要么是完整产物，永远没有半截状态。
type AtomicWriter struct {
	ctx       context.Context // OpenWrite 时捕获，句柄的生命周期不超过这个 ctx
	finalPath string
	st        *handleState
	cleanup   runtime.Cleanup
}

func newAtomicWriter(ctx context.Context, fsys fs.FileSystem, final string) (*AtomicWriter, error) {
	tmp := fsys.TempPath(final)
	raw, err := fsys.Create(ctx, tmp)
	if err != nil {
		return nil, fmt.Errorf("create provisional file: %w", err)
	}

	st := &handleState{fsys: fsys, tmpPath: tmp, raw: raw}
	aw := &AtomicWriter{ctx: ctx, finalPath: final, st: st}

	// GC 兜底: 句柄被遗弃 (既没 Close 也没 Discard 就失去引用) 时，
	// 由运行时触发丢弃，临时文件不会泄漏。
	// 注意这只是最后防线 —— 回收时机没有任何保证，
	// 正确的程序必须自己 defer Discard / 显式 Close。
	aw.cleanup = runtime.AddCleanup(aw, func(s *handleState) {
		s.discard(context.Background())
	}, st)

	return aw, nil
}

// ProvisionalPath 返回临时路径。产物在提交前暂存在这里。
func (aw *AtomicWriter) ProvisionalPath() string { return aw.st.tmpPath }

// FinalPath 返回提交后产物的落位路径。
func (aw *AtomicWriter) FinalPath() string { return aw.finalPath }

func (aw *AtomicWriter) Write(p []byte) (int, error) {
	if aw.st.phase.Load() != stateOpen {
		return 0, fmt.Errorf("write %s: %w", aw.finalPath, os.ErrClosed)
	}
	return aw.st.raw.Write(p)
}

// Close 提交: 关闭临时文件，然后一次 Move 把它 rename 到最终路径。
// 用 Move 而不是 RenameNoReplace —— 对同一个 Target 的后续写入
// 必须被允许原子地替换旧产物 (last commit wins)。
//
// 幂等: 第一次转移之后再调用是安全的 no-op
// (防止显式 Close 和自动回收路径同时开火)。
//
// 提交路上的任何后端错误都按"放弃"处理: 清理临时文件、原样上抛，
// 绝不会出现半提交。
func (aw *AtomicWriter) Close() error {
	if !aw.st.phase.CompareAndSwap(stateOpen, stateCommitted) {
		return nil
	}
	aw.cleanup.Stop()

	if err := aw.st.raw.Close(); err != nil {
		aw.st.phase.Store(stateDiscarded)
		aw.removeTemp()
		return fmt.Errorf("finalize provisional file: %w", err)
	}
	if err := aw.st.fsys.Move(aw.ctx, aw.st.tmpPath, aw.finalPath); err != nil {
		aw.st.phase.Store(stateDiscarded)
		aw.removeTemp()
		return fmt.Errorf("commit %s: %w", aw.finalPath, err)
	}
	return nil
}

// Discard 丢弃: 删掉临时文件，最终路径保持原样 (如果那儿已有旧产物，不动它)。
// 可以随便调: 提交后是 no-op，重复丢弃也是 no-op。
func (aw *AtomicWriter) Discard() {
	aw.cleanup.Stop()
	aw.st.discard(aw.ctx)
}

func (aw *AtomicWriter) removeTemp() {
	if err := aw.st.fsys.Remove(aw.ctx, aw.st.tmpPath); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: cleanup %s: %v\n", aw.st.tmpPath, err)
	}
}
