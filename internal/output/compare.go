package output

import (
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
)

// Delta describes how one metric moved relative to a baseline run.
type Delta struct {
	Metric   string
	Baseline float64
	Current  float64
	Change   float64 // percent, positive means the value went up
	Worse    bool
}

// comparedMetric binds a JSON path in a saved report to a direction:
// higherIsWorse true for latencies, false for throughput.
type comparedMetric struct {
	name          string
	path          string
	higherIsWorse bool
}

var comparedMetrics = []comparedMetric{
	{"ops_per_sec", "stats.ops_per_sec", false},
	{"read_mbps", "stats.read_mbps", false},
	{"write_mbps", "stats.write_mbps", false},
	{"p50_latency_ms", "stats.p50_latency_ms", true},
	{"p99_latency_ms", "stats.p99_latency_ms", true},
	{"mean_latency_ms", "stats.mean_latency_ms", true},
}

// CompareBaseline loads a previously saved JSON report and compares the
// current run against it metric by metric.
func CompareBaseline(baselinePath string, current Report) ([]Delta, error) {
	data, err := os.ReadFile(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", baselinePath, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("baseline %s is not valid JSON", baselinePath)
	}
	return compare(data, current), nil
}

func compare(baseline []byte, current Report) []Delta {
	currentValues := map[string]float64{
		"ops_per_sec":     current.Stats.OpsPerSec,
		"read_mbps":       current.Stats.ReadMBps,
		"write_mbps":      current.Stats.WriteMBps,
		"p50_latency_ms":  current.Stats.P50LatencyMs,
		"p99_latency_ms":  current.Stats.P99LatencyMs,
		"mean_latency_ms": current.Stats.MeanLatencyMs,
	}

	var deltas []Delta
	for _, m := range comparedMetrics {
		result := gjson.GetBytes(baseline, m.path)
		if !result.Exists() {
			continue
		}
		base := result.Float()
		cur := currentValues[m.name]
		if base == 0 && cur == 0 {
			continue
		}

		d := Delta{Metric: m.name, Baseline: base, Current: cur}
		if base != 0 {
			d.Change = (cur - base) / base * 100
		}
		if m.higherIsWorse {
			d.Worse = cur > base
		} else {
			d.Worse = cur < base
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// PrintComparison renders baseline deltas as a human-readable table.
func PrintComparison(w io.Writer, baselinePath string, deltas []Delta) {
	fmt.Fprintf(w, "\n--- Baseline Comparison (%s) ---\n", baselinePath)
	if len(deltas) == 0 {
		fmt.Fprintln(w, "No comparable metrics found in baseline.")
		return
	}
	for _, d := range deltas {
		marker := "✓"
		if d.Worse {
			marker = "✗"
		}
		fmt.Fprintf(w, "  %s %-16s baseline=%.2f current=%.2f (%+.1f%%)\n",
			marker, d.Metric, d.Baseline, d.Current, d.Change)
	}
}
