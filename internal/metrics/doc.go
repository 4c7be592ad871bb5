// Package metrics provides real-time latency metrics collection for disk
// I/O benchmarking.
//
// The central [Collector] type aggregates latency samples from all workers:
//
//	collector := metrics.NewCollector()
//	collector.Start() // mark run start for accurate throughput calculation
//
//	// Record one operation
//	collector.RecordOp(metrics.KindRead, latency, bytes, err)
//
//	// Get aggregated statistics
//	stats := collector.Stats(elapsed)
//
// [Stats] carries operation counts, byte totals, latency percentiles per
// kind (HdrHistogram backed), IOPS and throughput. It is safe to call
// RecordOp from multiple goroutines.
//
// Interval union accounting (serial vs parallel time per category) lives in
// the iostats package; the two are intentionally separate so either can be
// used without the other.
package metrics
