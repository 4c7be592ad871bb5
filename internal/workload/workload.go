package workload

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/ioprobe/internal/config"
	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/pool"
	"github.com/torosent/ioprobe/internal/tracing"
)

// Options configures a Workload.
type Options struct {
	Target     *Target
	BlockSize  int64
	ReadRatio  float64 // fraction of operations that are reads, 0..1
	Access     config.AccessPattern
	Fsync      bool // fsync after every write
	FsyncEvery int  // fsync after every N writes; overrides Fsync when > 0
	Seed       int64

	Stats     *iostats.Stats
	Collector *metrics.Collector
	Tracer    trace.Tracer
	Handles   *pool.HandlePool
}

// Workload issues block-aligned reads and writes against a target file. It
// implements the runner's Operation interface; each Do call performs exactly
// one read or one write.
type Workload struct {
	opt     Options
	blocks  int64
	poolKey string
	traced  bool

	mu  sync.Mutex
	rng *rand.Rand

	seq    atomic.Int64 // next sequential block index
	writes atomic.Int64 // writes since last fsync, for FsyncEvery

	payload []byte
	readBuf sync.Pool
}

// New validates opt and builds a Workload over the prepared target.
func New(opt Options) (*Workload, error) {
	if opt.Target == nil {
		return nil, fmt.Errorf("workload: target is required")
	}
	if opt.BlockSize <= 0 {
		return nil, fmt.Errorf("workload: block size must be positive, got %d", opt.BlockSize)
	}
	blocks := opt.Target.Size / opt.BlockSize
	if blocks == 0 {
		return nil, fmt.Errorf("workload: target size %d smaller than block size %d", opt.Target.Size, opt.BlockSize)
	}
	if opt.ReadRatio < 0 || opt.ReadRatio > 1 {
		return nil, fmt.Errorf("workload: read ratio must be between 0.0 and 1.0, got %g", opt.ReadRatio)
	}
	if opt.Handles == nil {
		opt.Handles = pool.NewHandlePool(0)
	}

	traced := opt.Tracer != nil
	if !traced {
		opt.Tracer = noop.NewTracerProvider().Tracer("ioprobe")
	}

	payload := make([]byte, opt.BlockSize)
	fillRng := rand.New(rand.NewSource(opt.Seed))
	fillRng.Read(payload)

	w := &Workload{
		opt:     opt,
		blocks:  blocks,
		traced:  traced,
		rng:     rand.New(rand.NewSource(opt.Seed)),
		payload: payload,
	}
	w.poolKey = pool.MakePoolKey(opt.Target.Path, NewHandle(opt.Target.Path, false).Mode())
	w.readBuf.New = func() interface{} {
		buf := make([]byte, opt.BlockSize)
		return &buf
	}
	return w, nil
}

// Do performs a single read or write operation.
func (w *Workload) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	handle, err := w.acquire(ctx)
	if err != nil {
		return err
	}
	defer w.opt.Handles.Put(w.poolKey, handle)

	offset := w.nextOffset()
	if w.isRead() {
		return w.read(ctx, handle, offset)
	}
	return w.write(ctx, handle, offset)
}

func (w *Workload) acquire(ctx context.Context) (*Handle, error) {
	factory := func() pool.Poolable {
		return NewHandle(w.opt.Target.Path, false)
	}

	p, reused := w.opt.Handles.Get(w.poolKey, factory)
	handle := p.(*Handle)
	if !reused {
		if err := handle.Open(ctx); err != nil {
			return nil, err
		}
		return handle, nil
	}
	// A pooled handle can come back without a descriptor when a Close raced
	// the pool. Swap it for a freshly opened one.
	if handle.Closed() {
		fresh, ok := w.opt.Handles.RetryStaleHandle(ctx, handle, factory)
		if !ok {
			return nil, fmt.Errorf("workload: reopen stale handle for %s", w.opt.Target.Path)
		}
		handle = fresh.(*Handle)
	}
	return handle, nil
}

// nextOffset returns a block-aligned offset within the target.
func (w *Workload) nextOffset() int64 {
	if w.opt.Access == config.AccessSequential {
		block := w.seq.Add(1) - 1
		return (block % w.blocks) * w.opt.BlockSize
	}
	w.mu.Lock()
	block := w.rng.Int63n(w.blocks)
	w.mu.Unlock()
	return block * w.opt.BlockSize
}

// isRead decides the operation kind for this call according to the read ratio.
func (w *Workload) isRead() bool {
	switch w.opt.ReadRatio {
	case 1:
		return true
	case 0:
		return false
	}
	w.mu.Lock()
	r := w.rng.Float64()
	w.mu.Unlock()
	return r < w.opt.ReadRatio
}

func (w *Workload) read(ctx context.Context, handle *Handle, offset int64) error {
	bufp := w.readBuf.Get().(*[]byte)
	defer w.readBuf.Put(bufp)
	buf := *bufp

	_, span := tracing.StartOpSpan(ctx, w.opt.Tracer, "read", offset, w.opt.BlockSize)

	start := time.Now()
	timer := iostats.StartReadTimer(w.opt.Stats, w.opt.BlockSize)
	n, err := handle.ReadAt(buf, offset)
	timer.Stop()
	latency := time.Since(start)

	tracing.EndSpan(span, err)
	w.opt.Collector.RecordOp(metrics.KindRead, latency, int64(n), err)
	return err
}

func (w *Workload) write(ctx context.Context, handle *Handle, offset int64) error {
	_, span := tracing.StartOpSpan(ctx, w.opt.Tracer, "write", offset, w.opt.BlockSize)

	start := time.Now()
	timer := iostats.StartWriteTimer(w.opt.Stats, w.opt.BlockSize)
	n, err := handle.WriteAt(w.payload, offset)
	timer.Stop()

	if err == nil && w.shouldSync() {
		err = w.fsync(ctx, handle, offset)
	}
	latency := time.Since(start)

	tracing.EndSpan(span, err)
	w.opt.Collector.RecordOp(metrics.KindWrite, latency, int64(n), err)
	return err
}

// shouldSync reports whether this write must be followed by an fsync.
func (w *Workload) shouldSync() bool {
	if w.opt.FsyncEvery > 0 {
		return w.writes.Add(1)%int64(w.opt.FsyncEvery) == 0
	}
	return w.opt.Fsync
}

// fsync flushes the handle, counting the flush as wait time rather than
// transfer time.
func (w *Workload) fsync(ctx context.Context, handle *Handle, offset int64) error {
	_, span := tracing.StartOpSpan(ctx, w.opt.Tracer, "fsync", offset, 0)

	timer := iostats.StartWaitTimer(w.opt.Stats)
	err := handle.Sync()
	timer.Stop()

	tracing.EndSpan(span, err)
	return err
}

// Close releases all pooled handles.
func (w *Workload) Close() error {
	return w.opt.Handles.Close()
}
