package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/output"
)

func TestNewRunID(t *testing.T) {
	id1 := NewRunID()
	id2 := NewRunID()

	if len(id1) != 26 {
		t.Errorf("run ID length = %d, want 26", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique run IDs")
	}
}

func TestHistoryAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	h := NewHistory(path)

	first := output.Report{
		Timestamp: time.Now().UTC(),
		Target:    "/mnt/bench/a.dat",
		Stats:     metrics.Stats{Total: 100, OpsPerSec: 50},
	}
	second := output.Report{
		Timestamp: time.Now().UTC(),
		Target:    "/mnt/bench/b.dat",
		Stats:     metrics.Stats{Total: 200, OpsPerSec: 80},
	}

	id1, err := h.Append(first)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id1 == "" {
		t.Error("expected generated run ID")
	}

	if _, err := h.Append(second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reports, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Target != "/mnt/bench/a.dat" {
		t.Errorf("reports[0].Target = %q, want oldest first", reports[0].Target)
	}
	if reports[0].ID != id1 {
		t.Errorf("reports[0].ID = %q, want %q", reports[0].ID, id1)
	}
	if reports[1].Stats.Total != 200 {
		t.Errorf("reports[1].Stats.Total = %d, want 200", reports[1].Stats.Total)
	}
}

func TestHistoryPreservesExplicitID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	h := NewHistory(path)

	id, err := h.Append(output.Report{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("Append() returned %q, want the explicit ID", id)
	}
}

func TestHistoryListMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing.jsonl"))

	reports, err := h.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("got %d reports from missing file, want 0", len(reports))
	}
}

func TestHistoryLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	h := NewHistory(path)

	if _, ok, err := h.Latest(); err != nil || ok {
		t.Errorf("Latest() on empty history = ok %v, err %v; want false, nil", ok, err)
	}

	h.Append(output.Report{Target: "/a"})
	h.Append(output.Report{Target: "/b"})

	latest, ok, err := h.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if !ok {
		t.Fatal("Latest() ok = false, want true")
	}
	if latest.Target != "/b" {
		t.Errorf("Latest().Target = %q, want /b", latest.Target)
	}
}
