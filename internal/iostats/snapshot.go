package iostats

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is an immutable point-in-time copy of the aggregator's counters
// plus the wall-clock time elapsed since the last reset. The zero value is
// valid and represents "no activity".
//
// Snapshots combine field-wise: Sub yields the statistics accrued strictly
// between two captures of the same aggregator, Add merges statistics from
// independent aggregators or time windows.
type Snapshot struct {
	Reads             uint64        `json:"reads"`
	Writes            uint64        `json:"writes"`
	VolumeRead        int64         `json:"volume_read"`
	VolumeWritten     int64         `json:"volume_written"`
	ReadTime          time.Duration `json:"read_time_ns"`
	WriteTime         time.Duration `json:"write_time_ns"`
	ParallelReadTime  time.Duration `json:"parallel_read_time_ns"`
	ParallelWriteTime time.Duration `json:"parallel_write_time_ns"`
	ParallelIOTime    time.Duration `json:"parallel_io_time_ns"`
	WaitTime          time.Duration `json:"wait_time_ns"`
	ParallelWaitTime  time.Duration `json:"parallel_wait_time_ns"`
	Elapsed           time.Duration `json:"elapsed_ns"`
}

// Snapshot captures the current counters. The copy is assembled one category
// at a time under that category's lock; a capture racing in-flight operations
// is eventually consistent across categories, which is acceptable for
// monitoring use.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{}

	s.readMu.Lock()
	snap.Reads = s.reads
	snap.VolumeRead = s.volumeRead
	snap.ReadTime = s.tReads
	snap.ParallelReadTime = s.pReads
	s.readMu.Unlock()

	s.writeMu.Lock()
	snap.Writes = s.writes
	snap.VolumeWritten = s.volumeWritten
	snap.WriteTime = s.tWrites
	snap.ParallelWriteTime = s.pWrites
	s.writeMu.Unlock()

	s.ioMu.Lock()
	snap.ParallelIOTime = s.pIOs
	s.ioMu.Unlock()

	s.waitMu.Lock()
	snap.WaitTime = s.tWaits
	snap.ParallelWaitTime = s.pWaits
	s.waitMu.Unlock()

	s.resetMu.Lock()
	snap.Elapsed = s.now().Sub(s.lastReset)
	s.resetMu.Unlock()

	return snap
}

// Add returns the field-wise sum of two snapshots.
func (a Snapshot) Add(b Snapshot) Snapshot {
	return Snapshot{
		Reads:             a.Reads + b.Reads,
		Writes:            a.Writes + b.Writes,
		VolumeRead:        a.VolumeRead + b.VolumeRead,
		VolumeWritten:     a.VolumeWritten + b.VolumeWritten,
		ReadTime:          a.ReadTime + b.ReadTime,
		WriteTime:         a.WriteTime + b.WriteTime,
		ParallelReadTime:  a.ParallelReadTime + b.ParallelReadTime,
		ParallelWriteTime: a.ParallelWriteTime + b.ParallelWriteTime,
		ParallelIOTime:    a.ParallelIOTime + b.ParallelIOTime,
		WaitTime:          a.WaitTime + b.WaitTime,
		ParallelWaitTime:  a.ParallelWaitTime + b.ParallelWaitTime,
		Elapsed:           a.Elapsed + b.Elapsed,
	}
}

// Sub returns the field-wise difference of two snapshots. For snapshots A
// (earlier) and B (later) of the same aggregator with no reset in between,
// B.Sub(A) holds the statistics accrued strictly between the two captures.
func (a Snapshot) Sub(b Snapshot) Snapshot {
	return Snapshot{
		Reads:             a.Reads - b.Reads,
		Writes:            a.Writes - b.Writes,
		VolumeRead:        a.VolumeRead - b.VolumeRead,
		VolumeWritten:     a.VolumeWritten - b.VolumeWritten,
		ReadTime:          a.ReadTime - b.ReadTime,
		WriteTime:         a.WriteTime - b.WriteTime,
		ParallelReadTime:  a.ParallelReadTime - b.ParallelReadTime,
		ParallelWriteTime: a.ParallelWriteTime - b.ParallelWriteTime,
		ParallelIOTime:    a.ParallelIOTime - b.ParallelIOTime,
		WaitTime:          a.WaitTime - b.WaitTime,
		ParallelWaitTime:  a.ParallelWaitTime - b.ParallelWaitTime,
		Elapsed:           a.Elapsed - b.Elapsed,
	}
}

// AverageReadSize returns VolumeRead / Reads, or zero without reads.
func (a Snapshot) AverageReadSize() int64 {
	if a.Reads == 0 {
		return 0
	}
	return a.VolumeRead / int64(a.Reads)
}

// AverageWriteSize returns VolumeWritten / Writes, or zero without writes.
func (a Snapshot) AverageWriteSize() int64 {
	if a.Writes == 0 {
		return 0
	}
	return a.VolumeWritten / int64(a.Writes)
}

// ReadBandwidth returns bytes per second read, measured against the parallel
// read time (effective device-level bandwidth, not per-worker bandwidth).
func (a Snapshot) ReadBandwidth() float64 {
	return bandwidth(a.VolumeRead, a.ParallelReadTime)
}

// WriteBandwidth returns bytes per second written against the parallel
// write time.
func (a Snapshot) WriteBandwidth() float64 {
	return bandwidth(a.VolumeWritten, a.ParallelWriteTime)
}

// IOBusyRatio returns the fraction of the elapsed wall-clock time during
// which at least one read or write was in flight.
func (a Snapshot) IOBusyRatio() float64 {
	if a.Elapsed <= 0 {
		return 0
	}
	return float64(a.ParallelIOTime) / float64(a.Elapsed)
}

func bandwidth(volume int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(volume) / d.Seconds()
}

// String renders a multi-line human-readable report.
func (a Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "I/O statistics\n")
	fmt.Fprintf(&b, " total number of reads        : %d\n", a.Reads)
	fmt.Fprintf(&b, " number of bytes read         : %d\n", a.VolumeRead)
	fmt.Fprintf(&b, " time spent in serving all read requests  : %s\n", a.ReadTime)
	fmt.Fprintf(&b, " time spent in reading (parallel)         : %s\n", a.ParallelReadTime)
	fmt.Fprintf(&b, " total number of writes       : %d\n", a.Writes)
	fmt.Fprintf(&b, " number of bytes written      : %d\n", a.VolumeWritten)
	fmt.Fprintf(&b, " time spent in serving all write requests : %s\n", a.WriteTime)
	fmt.Fprintf(&b, " time spent in writing (parallel)         : %s\n", a.ParallelWriteTime)
	fmt.Fprintf(&b, " time spent in I/O (parallel)             : %s\n", a.ParallelIOTime)
	fmt.Fprintf(&b, " I/O wait time                : %s\n", a.WaitTime)
	fmt.Fprintf(&b, " elapsed time                 : %s", a.Elapsed)
	return b.String()
}
