package workload

import (
	"context"
	"fmt"
	"os"
)

// Handle wraps an open file descriptor on the target so descriptors can be
// pooled and reused across operations.
type Handle struct {
	path string
	sync bool
	file *os.File
}

// NewHandle creates an unopened handle for path. With sync true the file is
// opened with O_SYNC so every write reaches stable storage before returning.
func NewHandle(path string, sync bool) *Handle {
	return &Handle{path: path, sync: sync}
}

// Open opens the underlying file descriptor.
func (h *Handle) Open(ctx context.Context) error {
	if h.file != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	flags := os.O_RDWR
	if h.sync {
		flags |= os.O_SYNC
	}
	f, err := os.OpenFile(h.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", h.path, err)
	}
	h.file = f
	return nil
}

// Close closes the descriptor. Safe to call on an unopened handle.
func (h *Handle) Close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

// Closed reports whether the handle currently has no open descriptor.
func (h *Handle) Closed() bool {
	return h.file == nil
}

// ReadAt reads len(p) bytes at the given offset.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if h.file == nil {
		return 0, os.ErrClosed
	}
	return h.file.ReadAt(p, off)
}

// WriteAt writes len(p) bytes at the given offset.
func (h *Handle) WriteAt(p []byte, off int64) (int, error) {
	if h.file == nil {
		return 0, os.ErrClosed
	}
	return h.file.WriteAt(p, off)
}

// Sync flushes the file to stable storage.
func (h *Handle) Sync() error {
	if h.file == nil {
		return os.ErrClosed
	}
	return h.file.Sync()
}

// Mode returns the pool mode string for this handle's open flags.
func (h *Handle) Mode() string {
	if h.sync {
		return "rw+sync"
	}
	return "rw"
}
