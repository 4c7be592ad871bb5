package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/ioprobe/internal/metrics"
)

func TestProgressReporterBasic(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	for i := 0; i < 5; i++ {
		collector.RecordOp(metrics.KindRead, 30*time.Millisecond, 4096, nil)
	}

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 100*time.Millisecond, &buf)

	if reporter == nil {
		t.Fatal("Expected non-nil reporter")
	}

	reporter.Stop()
}

func TestProgressReporterFormatting(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	collector.RecordOp(metrics.KindRead, 50*time.Millisecond, 4096, nil)
	collector.RecordOp(metrics.KindWrite, 20*time.Millisecond, 4096, nil)

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 50*time.Millisecond, &buf)
	reporter.Start()

	time.Sleep(100 * time.Millisecond)
	reporter.Stop()

	output := buf.String()
	if !strings.Contains(output, "Ops:") {
		t.Error("Expected 'Ops:' in progress output")
	}
	if !strings.Contains(output, "IOPS:") {
		t.Error("Expected 'IOPS:' in progress output")
	}
}

func TestProgressReporterDoubleStart(t *testing.T) {
	collector := metrics.NewCollector()

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 50*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start() // second Start is a no-op
	reporter.Stop()
}

func TestProgressReporterNilWriter(t *testing.T) {
	collector := metrics.NewCollector()

	reporter := NewProgressReporter(collector, 50*time.Millisecond, nil)
	reporter.Start()
	time.Sleep(60 * time.Millisecond)
	reporter.Stop()
}
