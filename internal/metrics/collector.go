package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Kind labels the operation category a sample belongs to.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
)

// Collector records per-operation latency metrics in a thread-safe manner.
// It complements the iostats aggregator: iostats answers "how much time was
// spent, serially and in parallel", the Collector answers "how were the
// individual operation latencies distributed".
type Collector struct {
	mu           sync.Mutex
	readHist     *hdrhistogram.Histogram
	writeHist    *hdrhistogram.Histogram
	reads        int64
	writes       int64
	failures     int64
	bytesRead    int64
	bytesWritten int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	errorsByType map[string]int64
	start        time.Time
}

// Stats represents aggregated metrics.
type Stats struct {
	Total        int64 `json:"total"`
	Reads        int64 `json:"reads"`
	Writes       int64 `json:"writes"`
	Failures     int64 `json:"failures"`
	BytesRead    int64 `json:"bytes_read"`
	BytesWritten int64 `json:"bytes_written"`

	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P90Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`
	ReadP99     time.Duration `json:"-"`
	WriteP99    time.Duration `json:"-"`
	Duration    time.Duration `json:"-"`

	OpsPerSec float64 `json:"ops_per_sec"`
	ReadMBps  float64 `json:"read_mbps"`
	WriteMBps float64 `json:"write_mbps"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64        `json:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms"`
	P50LatencyMs  float64        `json:"p50_latency_ms"`
	P90LatencyMs  float64        `json:"p90_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms"`
	ReadP99Ms     float64        `json:"read_p99_ms"`
	WriteP99Ms    float64        `json:"write_p99_ms"`
	DurationMs    float64        `json:"duration_ms"`
	Errors        map[string]int `json:"errors,omitempty"`
}

func NewCollector() *Collector {
	return &Collector{
		// Track latencies from 1µs up to 60s with 3 significant figures.
		readHist:     hdrhistogram.New(1, 60_000_000, 3),
		writeHist:    hdrhistogram.New(1, 60_000_000, 3),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Start re-stamps the collection start time. Call it right before the
// workload begins so throughput reflects the actual run window even when the
// collector was constructed earlier.
func (c *Collector) Start() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

// Elapsed returns the time since collection started.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// RecordOp records a single operation's latency, transfer size and error state.
func (c *Collector) RecordOp(kind Kind, latency time.Duration, bytes int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hist := c.readHist
	if kind == KindWrite {
		hist = c.writeHist
	}
	if latency > 0 {
		us := latency.Microseconds()
		if us < hist.LowestTrackableValue() {
			us = hist.LowestTrackableValue()
		}
		if us > hist.HighestTrackableValue() {
			us = hist.HighestTrackableValue()
		}
		_ = hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	switch kind {
	case KindWrite:
		c.writes++
		c.bytesWritten += bytes
	default:
		c.reads++
		c.bytesRead += bytes
	}

	if err != nil {
		c.failures++
		errorType := fmt.Sprintf("%T", err)
		if len(errorType) > 30 {
			errorType = errorType[len(errorType)-30:]
		}
		c.errorsByType[errorType]++
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.reads + c.writes
	stats := Stats{
		Total:        total,
		Reads:        c.reads,
		Writes:       c.writes,
		Failures:     c.failures,
		BytesRead:    c.bytesRead,
		BytesWritten: c.bytesWritten,
		MinLatency:   c.minLatency,
		MaxLatency:   c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	merged := hdrhistogram.New(1, 60_000_000, 3)
	merged.Merge(c.readHist)
	merged.Merge(c.writeHist)
	if merged.TotalCount() > 0 {
		stats.P50Latency = time.Duration(merged.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(merged.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(merged.ValueAtQuantile(99)) * time.Microsecond
	}
	if c.readHist.TotalCount() > 0 {
		stats.ReadP99 = time.Duration(c.readHist.ValueAtQuantile(99)) * time.Microsecond
	}
	if c.writeHist.TotalCount() > 0 {
		stats.WriteP99 = time.Duration(c.writeHist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)
	stats.ReadP99Ms = float64(stats.ReadP99) / float64(time.Millisecond)
	stats.WriteP99Ms = float64(stats.WriteP99) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.OpsPerSec = float64(total) / elapsed.Seconds()
	}
	if elapsed > 0 {
		stats.ReadMBps = float64(c.bytesRead) / elapsed.Seconds() / (1 << 20)
		stats.WriteMBps = float64(c.bytesWritten) / elapsed.Seconds() / (1 << 20)
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

// GetErrorBreakdown returns a map of error types to their counts.
func (c *Collector) GetErrorBreakdown() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]int)
	for k, v := range c.errorsByType {
		result[k] = int(v)
	}
	return result
}
