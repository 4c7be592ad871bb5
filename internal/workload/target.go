// Package workload implements the disk I/O operation executed by the runner:
// block-aligned reads and writes against a target file, instrumented with
// iostats timers, latency collection and optional tracing spans.
package workload

import (
	"fmt"
	"os"
)

// Target is the file a benchmark run operates on. It remembers whether the
// run created the file so Cleanup never deletes a pre-existing target.
type Target struct {
	Path    string
	Size    int64
	created bool
}

// PrepareTarget opens or creates the benchmark target file and sizes it.
// An existing file larger than size is left alone; a smaller or new file is
// extended to size. With preallocate false a new file stays sparse until
// written.
func PrepareTarget(path string, size int64, preallocate bool) (*Target, error) {
	if size <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", size)
	}

	t := &Target{Path: path, Size: size}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		t.created = true
	case err != nil:
		return nil, fmt.Errorf("stat target %s: %w", path, err)
	case info.IsDir():
		return nil, fmt.Errorf("target %s is a directory", path)
	case info.Size() >= size:
		t.Size = info.Size()
		return t, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open target %s: %w", path, err)
	}
	defer f.Close()

	if preallocate {
		if err := fill(f, size); err != nil {
			return nil, fmt.Errorf("preallocate target %s: %w", path, err)
		}
	} else if err := f.Truncate(size); err != nil {
		return nil, fmt.Errorf("size target %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync target %s: %w", path, err)
	}
	return t, nil
}

// fill writes real blocks up to size so reads hit allocated extents instead
// of returning zeros from a hole.
func fill(f *os.File, size int64) error {
	const chunk = 1 << 20
	buf := make([]byte, chunk)
	for i := range buf {
		buf[i] = byte(i)
	}

	var off int64
	for off < size {
		n := int64(len(buf))
		if size-off < n {
			n = size - off
		}
		if _, err := f.WriteAt(buf[:n], off); err != nil {
			return err
		}
		off += n
	}
	return nil
}

// Created reports whether PrepareTarget created the file.
func (t *Target) Created() bool {
	return t.created
}

// Cleanup removes the target file if this run created it.
func (t *Target) Cleanup() error {
	if t == nil || !t.created {
		return nil
	}
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove target %s: %w", t.Path, err)
	}
	return nil
}
