// Package output renders benchmark results: text and JSON reports, live
// progress lines, and comparison against a saved baseline report.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/torosent/ioprobe/internal/iostats"
	"github.com/torosent/ioprobe/internal/metrics"
)

// Report is the complete result of one benchmark run. Its JSON form is what
// gets written to result files and read back for baseline comparison.
type Report struct {
	ID        string           `json:"id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Target    string           `json:"target"`
	Stats     metrics.Stats    `json:"stats"`
	IO        iostats.Snapshot `json:"io"`
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report Report) {
	stats := report.Stats
	snap := report.IO

	fmt.Fprintln(w, "\n--- I/O Benchmark Results ---")
	fmt.Fprintf(w, "Target:            %s\n", report.Target)
	fmt.Fprintf(w, "Total Operations:  %d\n", stats.Total)
	fmt.Fprintf(w, "Reads:             %d (%s)\n", stats.Reads, humanize.IBytes(uint64(stats.BytesRead)))
	fmt.Fprintf(w, "Writes:            %d (%s)\n", stats.Writes, humanize.IBytes(uint64(stats.BytesWritten)))
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Ops/sec:           %.2f\n", stats.OpsPerSec)
	fmt.Fprintf(w, "Read Throughput:   %.2f MiB/s\n", stats.ReadMBps)
	fmt.Fprintf(w, "Write Throughput:  %.2f MiB/s\n", stats.WriteMBps)

	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)
	if stats.Reads > 0 {
		fmt.Fprintf(w, "  Read P99:        %s\n", stats.ReadP99)
	}
	if stats.Writes > 0 {
		fmt.Fprintf(w, "  Write P99:       %s\n", stats.WriteP99)
	}

	printIOTimes(w, snap)

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nError Breakdown:")
		types := make([]string, 0, len(stats.Errors))
		for errType := range stats.Errors {
			types = append(types, errType)
		}
		sort.Slice(types, func(i, j int) bool {
			return stats.Errors[types[i]] > stats.Errors[types[j]]
		})
		for _, errType := range types {
			fmt.Fprintf(w, "  - %s: %d\n", metrics.FriendlyErrorName(errType), stats.Errors[errType])
		}
	}
}

// printIOTimes renders the serial vs parallel time accounting section. Skipped
// entirely when detailed accounting was off and every counter is zero.
func printIOTimes(w io.Writer, snap iostats.Snapshot) {
	if snap.Reads == 0 && snap.Writes == 0 && snap.WaitTime == 0 {
		return
	}

	fmt.Fprintln(w, "\nI/O Time Accounting:")
	if snap.Reads > 0 {
		fmt.Fprintf(w, "  Read time (serial):      %s\n", snap.ReadTime)
		fmt.Fprintf(w, "  Read time (parallel):    %s\n", snap.ParallelReadTime)
	}
	if snap.Writes > 0 {
		fmt.Fprintf(w, "  Write time (serial):     %s\n", snap.WriteTime)
		fmt.Fprintf(w, "  Write time (parallel):   %s\n", snap.ParallelWriteTime)
	}
	fmt.Fprintf(w, "  I/O time (parallel):     %s\n", snap.ParallelIOTime)
	if snap.WaitTime > 0 {
		fmt.Fprintf(w, "  Wait time (serial):      %s\n", snap.WaitTime)
		fmt.Fprintf(w, "  Wait time (parallel):    %s\n", snap.ParallelWaitTime)
	}
	fmt.Fprintf(w, "  Elapsed:                 %s\n", snap.Elapsed)
	if busy := snap.IOBusyRatio(); busy > 0 {
		fmt.Fprintf(w, "  Device busy:             %.1f%%\n", busy*100)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
