package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareTargetCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.dat")

	target, err := PrepareTarget(path, 1<<20, true)
	if err != nil {
		t.Fatalf("PrepareTarget() error = %v", err)
	}
	if !target.Created() {
		t.Error("expected Created() = true for new file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 1<<20 {
		t.Errorf("target size = %d, want %d", info.Size(), 1<<20)
	}

	if err := target.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected target file removed by Cleanup")
	}
}

func TestPrepareTargetSparse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.dat")

	target, err := PrepareTarget(path, 256<<10, false)
	if err != nil {
		t.Fatalf("PrepareTarget() error = %v", err)
	}
	if target.Size != 256<<10 {
		t.Errorf("target.Size = %d, want %d", target.Size, 256<<10)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 256<<10 {
		t.Errorf("target size = %d, want %d", info.Size(), 256<<10)
	}
}

func TestPrepareTargetExistingLargerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.dat")
	if err := os.WriteFile(path, make([]byte, 2<<20), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	target, err := PrepareTarget(path, 1<<20, true)
	if err != nil {
		t.Fatalf("PrepareTarget() error = %v", err)
	}
	if target.Created() {
		t.Error("expected Created() = false for existing file")
	}
	if target.Size != 2<<20 {
		t.Errorf("target.Size = %d, want existing size %d", target.Size, 2<<20)
	}

	// Cleanup must not remove a file the run did not create.
	if err := target.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("pre-existing target must survive Cleanup")
	}
}

func TestPrepareTargetExtendsSmallerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.dat")
	if err := os.WriteFile(path, make([]byte, 4<<10), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	target, err := PrepareTarget(path, 64<<10, false)
	if err != nil {
		t.Fatalf("PrepareTarget() error = %v", err)
	}
	if target.Created() {
		t.Error("expected Created() = false for existing file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 64<<10 {
		t.Errorf("target size = %d, want %d", info.Size(), 64<<10)
	}
}

func TestPrepareTargetErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := PrepareTarget(filepath.Join(dir, "x.dat"), 0, true); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := PrepareTarget(dir, 1<<20, true); err == nil {
		t.Error("expected error for directory target")
	}
}
