package pool

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Poolable represents any handle that can be pooled and reused.
type Poolable interface {
	Open(ctx context.Context) error
	Close() error
}

// HandlePool manages a pool of reusable file handles keyed by path+mode.
// Pooling descriptors lets each worker reuse an already-open handle instead
// of paying the open/close syscall cost per operation.
type HandlePool struct {
	pools sync.Map // map[string]chan Poolable
	size  int      // max handles per pool
}

// NewHandlePool creates a new handle pool with the specified max size per key.
func NewHandlePool(size int) *HandlePool {
	if size <= 0 {
		size = 10 // default size
	}
	return &HandlePool{
		size: size,
	}
}

// Get retrieves or creates a handle from the pool.
// If reused is true, the handle was taken from the pool.
// If reused is false, a new handle was created and the caller should open it.
func (p *HandlePool) Get(key string, factory func() Poolable) (handle Poolable, reused bool) {
	poolVal, _ := p.pools.LoadOrStore(key, make(chan Poolable, p.size))
	pool := poolVal.(chan Poolable)

	// Try to get an existing handle from the pool
	select {
	case handle = <-pool:
		return handle, true
	default:
		// Create new handle if pool is empty
		return factory(), false
	}
}

// Put returns a handle to the pool for reuse.
// If the pool is full, the handle is closed instead.
func (p *HandlePool) Put(key string, handle Poolable) error {
	poolVal, ok := p.pools.Load(key)
	if !ok {
		// Pool doesn't exist, close the handle
		return handle.Close()
	}

	pool := poolVal.(chan Poolable)

	select {
	case pool <- handle:
		// Successfully returned to pool
		return nil
	default:
		// Pool full, close the handle
		return handle.Close()
	}
}

// RetryStaleHandle attempts to reopen a stale handle once.
// Returns the opened handle and true if successful, or nil and false if failed.
func (p *HandlePool) RetryStaleHandle(ctx context.Context, handle Poolable, factory func() Poolable) (Poolable, bool) {
	// Close the stale handle
	handle.Close()

	// Create a new handle and try to open it
	newHandle := factory()
	if err := newHandle.Open(ctx); err != nil {
		return nil, false
	}

	return newHandle, true
}

// Close closes all handles in all pools.
func (p *HandlePool) Close() error {
	var errs []string

	p.pools.Range(func(key, value interface{}) bool {
		if pool, ok := value.(chan Poolable); ok {
			close(pool)
			for handle := range pool {
				if err := handle.Close(); err != nil {
					errs = append(errs, err.Error())
				}
			}
		}
		return true
	})

	if len(errs) > 0 {
		return fmt.Errorf("pool close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MakePoolKey generates a deterministic key from a target path and open mode.
func MakePoolKey(path string, mode string) string {
	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteString("|")
	sb.WriteString(mode)
	return sb.String()
}
