package pool

import (
	"context"
	"fmt"
	"testing"
)

type mockHandle struct {
	opened   bool
	closed   bool
	failOpen bool
}

func (m *mockHandle) Open(ctx context.Context) error {
	if m.failOpen {
		return fmt.Errorf("open failed")
	}
	m.opened = true
	return nil
}

func (m *mockHandle) Close() error {
	m.closed = true
	m.opened = false
	return nil
}

func TestHandlePool_GetPut(t *testing.T) {
	pool := NewHandlePool(5)

	factory := func() Poolable {
		return &mockHandle{}
	}

	// Get a new handle
	handle1, reused1 := pool.Get("key1", factory)
	if reused1 {
		t.Error("Expected new handle, got reused")
	}
	if handle1 == nil {
		t.Fatal("Expected handle, got nil")
	}

	// Put it back
	if err := pool.Put("key1", handle1); err != nil {
		t.Errorf("Put failed: %v", err)
	}

	// Get it again, should be reused
	handle2, reused2 := pool.Get("key1", factory)
	if !reused2 {
		t.Error("Expected reused handle, got new")
	}
	if handle2 != handle1 {
		t.Error("Expected same handle instance")
	}
}

func TestHandlePool_Close(t *testing.T) {
	pool := NewHandlePool(5)

	handle := &mockHandle{}
	pool.Put("key1", handle)

	if err := pool.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if !handle.closed {
		t.Error("Expected handle to be closed")
	}
}

func TestMakePoolKey(t *testing.T) {
	key1 := MakePoolKey("/mnt/bench/testfile", "rw")
	key2 := MakePoolKey("/mnt/bench/testfile", "rw")

	if key1 != key2 {
		t.Error("Expected same key for same path and mode")
	}

	key3 := MakePoolKey("/mnt/bench/testfile", "rw+sync")
	if key1 == key3 {
		t.Error("Expected different keys for different modes")
	}
}

func TestHandlePool_RetryStaleHandle(t *testing.T) {
	pool := NewHandlePool(5)

	staleHandle := &mockHandle{opened: true}

	factory := func() Poolable {
		return &mockHandle{}
	}

	newHandle, ok := pool.RetryStaleHandle(context.Background(), staleHandle, factory)
	if !ok {
		t.Error("Expected successful retry")
	}
	if newHandle == nil {
		t.Error("Expected new handle")
	}
	if !staleHandle.closed {
		t.Error("Expected stale handle to be closed")
	}

	mock := newHandle.(*mockHandle)
	if !mock.opened {
		t.Error("Expected new handle to be opened")
	}
}

func TestHandlePool_RetryStaleHandle_Failure(t *testing.T) {
	pool := NewHandlePool(5)

	staleHandle := &mockHandle{opened: true}

	factory := func() Poolable {
		return &mockHandle{failOpen: true}
	}

	newHandle, ok := pool.RetryStaleHandle(context.Background(), staleHandle, factory)
	if ok {
		t.Error("Expected failed retry")
	}
	if newHandle != nil {
		t.Error("Expected nil handle on failure")
	}
}
