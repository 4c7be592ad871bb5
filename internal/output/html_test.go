package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
	"github.com/torosent/ioprobe/internal/output"
	"github.com/torosent/ioprobe/internal/threshold"
)

func htmlSampleReport() output.Report {
	return output.Report{
		Timestamp: time.Now(),
		Target:    "/mnt/bench/testfile.dat",
		Stats: metrics.Stats{
			Total:        1000,
			Reads:        700,
			Writes:       300,
			Failures:     5,
			BytesRead:    700 * 4096,
			BytesWritten: 300 * 4096,
			MinLatency:   100 * time.Microsecond,
			MaxLatency:   20 * time.Millisecond,
			MeanLatency:  2 * time.Millisecond,
			P50Latency:   1 * time.Millisecond,
			P90Latency:   5 * time.Millisecond,
			P99Latency:   15 * time.Millisecond,
			Duration:     10 * time.Second,
			OpsPerSec:    100.0,
			ReadMBps:     180.5,
			WriteMBps:    60.2,
		},
		IO: iostats.Snapshot{
			Reads:            700,
			Writes:           300,
			ReadTime:         8 * time.Second,
			ParallelReadTime: 5 * time.Second,
			WriteTime:        2 * time.Second,
			ParallelIOTime:   6 * time.Second,
			Elapsed:          10 * time.Second,
		},
	}
}

func TestGenerateHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := output.GenerateHTMLReport(&buf, htmlSampleReport(), nil); err != nil {
		t.Fatalf("GenerateHTMLReport failed: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"ioprobe Benchmark Report",
		"/mnt/bench/testfile.dat",
		"Total Operations",
		"180.50 MiB/s",
		"I/O Time Accounting",
		"Device busy: 60.00%",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in HTML output", want)
		}
	}
}

func TestGenerateHTMLReportWithThresholds(t *testing.T) {
	thresholds, err := threshold.Parse("io_op_duration:p99<100")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	results := []threshold.Result{
		{Threshold: thresholds, Actual: 15.0, Pass: true},
	}

	var buf bytes.Buffer
	if err := output.GenerateHTMLReport(&buf, htmlSampleReport(), results); err != nil {
		t.Fatalf("GenerateHTMLReport failed: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "Thresholds (1/1 Passed)") {
		t.Error("expected threshold summary in HTML output")
	}
	if !strings.Contains(html, "PASS") {
		t.Error("expected PASS badge in HTML output")
	}
}

func TestGenerateHTMLReportWithErrors(t *testing.T) {
	report := htmlSampleReport()
	report.Stats.Errors = map[string]int{"*fs.PathError": 5}

	var buf bytes.Buffer
	if err := output.GenerateHTMLReport(&buf, report, nil); err != nil {
		t.Fatalf("GenerateHTMLReport failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Error Breakdown") {
		t.Error("expected error breakdown section in HTML output")
	}
}
