package iostats

import (
	"sync"
	"time"
)

// Config selects which instrumentation categories are recorded. Hooks of a
// disabled category are no-ops and its counters always read zero, so callers
// never need to guard call sites.
type Config struct {
	// DetailedIO enables read/write accounting (counts, volumes, serial and
	// parallel times).
	DetailedIO bool
	// WaitTracking enables accounting of explicit wait periods.
	WaitTracking bool
	// Now overrides the clock. Optional injection for tests; defaults to
	// time.Now.
	Now func() time.Time
}

// DefaultConfig enables every category.
func DefaultConfig() Config {
	return Config{DetailedIO: true, WaitTracking: true}
}

// Stats collects I/O statistics from concurrently running operations.
//
// Each category (read, write, combined I/O, wait) is guarded by its own
// mutex so unrelated categories never contend. The combined I/O counters
// track the union of read-busy and write-busy time and are updated in their
// own critical section from both the read and the write hooks.
type Stats struct {
	detailedIO   bool
	waitTracking bool
	now          func() time.Time

	readMu     sync.Mutex
	reads      uint64
	volumeRead int64
	tReads     time.Duration
	pReads     time.Duration
	pBeginRead time.Time
	accReads   int

	writeMu       sync.Mutex
	writes        uint64
	volumeWritten int64
	tWrites       time.Duration
	pWrites       time.Duration
	pBeginWrite   time.Time
	accWrites     int

	ioMu     sync.Mutex
	pIOs     time.Duration
	pBeginIO time.Time
	accIOs   int

	waitMu     sync.Mutex
	tWaits     time.Duration
	pWaits     time.Duration
	pBeginWait time.Time
	accWaits   int

	resetMu   sync.Mutex
	lastReset time.Time
}

// New creates a Stats aggregator. One instance is meant to live for the
// whole process; pass it to the I/O layer rather than reaching for a global.
func New(cfg Config) *Stats {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Stats{
		detailedIO:   cfg.DetailedIO,
		waitTracking: cfg.WaitTracking,
		now:          now,
		pBeginRead:   t,
		pBeginWrite:  t,
		pBeginIO:     t,
		pBeginWait:   t,
		lastReset:    t,
	}
}

// ReadStarted records that a read of size bytes has begun. size may be zero.
func (s *Stats) ReadStarted(size int64) {
	if !s.detailedIO {
		return
	}
	now := s.now()

	s.readMu.Lock()
	s.volumeRead += size
	// now is taken before the lock, so a faster racer may already have
	// stamped a later pBegin. A stale timestamp never accrues or rolls the
	// epoch backwards.
	if diff := now.Sub(s.pBeginRead); diff > 0 {
		s.tReads += time.Duration(s.accReads) * diff
		if s.accReads > 0 {
			s.pReads += diff
		}
		s.pBeginRead = now
	}
	s.accReads++
	s.readMu.Unlock()

	s.ioStarted(now)
}

// ReadFinished records completion of the oldest unfinished read. Every
// ReadStarted must be paired with exactly one ReadFinished; a mismatch
// silently corrupts the parallel accounting for the category.
func (s *Stats) ReadFinished() {
	if !s.detailedIO {
		return
	}
	now := s.now()

	s.readMu.Lock()
	if diff := now.Sub(s.pBeginRead); diff > 0 {
		s.tReads += time.Duration(s.accReads) * diff
		if s.accReads > 0 {
			s.pReads += diff
		}
		s.pBeginRead = now
	}
	s.accReads--
	s.reads++
	s.readMu.Unlock()

	s.ioFinished(now)
}

// WriteStarted records that a write of size bytes has begun. size may be zero.
func (s *Stats) WriteStarted(size int64) {
	if !s.detailedIO {
		return
	}
	now := s.now()

	s.writeMu.Lock()
	s.volumeWritten += size
	if diff := now.Sub(s.pBeginWrite); diff > 0 {
		s.tWrites += time.Duration(s.accWrites) * diff
		if s.accWrites > 0 {
			s.pWrites += diff
		}
		s.pBeginWrite = now
	}
	s.accWrites++
	s.writeMu.Unlock()

	s.ioStarted(now)
}

// WriteFinished records completion of the oldest unfinished write.
func (s *Stats) WriteFinished() {
	if !s.detailedIO {
		return
	}
	now := s.now()

	s.writeMu.Lock()
	if diff := now.Sub(s.pBeginWrite); diff > 0 {
		s.tWrites += time.Duration(s.accWrites) * diff
		if s.accWrites > 0 {
			s.pWrites += diff
		}
		s.pBeginWrite = now
	}
	s.accWrites--
	s.writes++
	s.writeMu.Unlock()

	s.ioFinished(now)
}

// WaitStarted records the beginning of a period spent blocked on completion
// of an I/O operation (as opposed to performing one).
func (s *Stats) WaitStarted() {
	if !s.waitTracking {
		return
	}
	now := s.now()

	s.waitMu.Lock()
	if diff := now.Sub(s.pBeginWait); diff > 0 {
		s.tWaits += time.Duration(s.accWaits) * diff
		if s.accWaits > 0 {
			s.pWaits += diff
		}
		s.pBeginWait = now
	}
	s.accWaits++
	s.waitMu.Unlock()
}

// WaitFinished records the end of a wait period.
func (s *Stats) WaitFinished() {
	if !s.waitTracking {
		return
	}
	now := s.now()

	s.waitMu.Lock()
	if diff := now.Sub(s.pBeginWait); diff > 0 {
		s.tWaits += time.Duration(s.accWaits) * diff
		if s.accWaits > 0 {
			s.pWaits += diff
		}
		s.pBeginWait = now
	}
	s.accWaits--
	s.waitMu.Unlock()
}

func (s *Stats) ioStarted(now time.Time) {
	s.ioMu.Lock()
	if diff := now.Sub(s.pBeginIO); diff > 0 {
		if s.accIOs > 0 {
			s.pIOs += diff
		}
		s.pBeginIO = now
	}
	s.accIOs++
	s.ioMu.Unlock()
}

func (s *Stats) ioFinished(now time.Time) {
	s.ioMu.Lock()
	if diff := now.Sub(s.pBeginIO); diff > 0 {
		if s.accIOs > 0 {
			s.pIOs += diff
		}
		s.pBeginIO = now
	}
	s.accIOs--
	s.ioMu.Unlock()
}

// Reset zeroes all counters and sums and re-stamps the reset time.
//
// Reset is safe to call while operations are in flight: active counts are
// preserved and the begin timestamp of every category is moved to the reset
// instant, so still-running operations contribute only the part of their
// duration that falls after the reset.
func (s *Stats) Reset() {
	now := s.now()

	s.readMu.Lock()
	s.reads = 0
	s.volumeRead = 0
	s.tReads = 0
	s.pReads = 0
	s.pBeginRead = now
	s.readMu.Unlock()

	s.writeMu.Lock()
	s.writes = 0
	s.volumeWritten = 0
	s.tWrites = 0
	s.pWrites = 0
	s.pBeginWrite = now
	s.writeMu.Unlock()

	s.ioMu.Lock()
	s.pIOs = 0
	s.pBeginIO = now
	s.ioMu.Unlock()

	s.waitMu.Lock()
	s.tWaits = 0
	s.pWaits = 0
	s.pBeginWait = now
	s.waitMu.Unlock()

	s.resetMu.Lock()
	s.lastReset = now
	s.resetMu.Unlock()
}

// Reads returns the number of completed read operations.
func (s *Stats) Reads() uint64 {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.reads
}

// Writes returns the number of completed write operations.
func (s *Stats) Writes() uint64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writes
}

// ReadVolume returns the number of bytes read.
func (s *Stats) ReadVolume() int64 {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.volumeRead
}

// WrittenVolume returns the number of bytes written.
func (s *Stats) WrittenVolume() int64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.volumeWritten
}

// ReadTime returns the time that would have been spent in reads if none
// overlapped. Can exceed wall-clock time under concurrency.
func (s *Stats) ReadTime() time.Duration {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.tReads
}

// WriteTime returns the serialized write time.
func (s *Stats) WriteTime() time.Duration {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.tWrites
}

// ParallelReadTime returns the wall-clock time during which at least one
// read was in flight. Always <= ReadTime.
func (s *Stats) ParallelReadTime() time.Duration {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.pReads
}

// ParallelWriteTime returns the wall-clock time during which at least one
// write was in flight.
func (s *Stats) ParallelWriteTime() time.Duration {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.pWrites
}

// ParallelIOTime returns the wall-clock time during which at least one read
// or write was in flight. It is the measure of the union of the read-busy
// and write-busy intervals, never their sum.
func (s *Stats) ParallelIOTime() time.Duration {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	return s.pIOs
}

// WaitTime returns the serialized wait time.
func (s *Stats) WaitTime() time.Duration {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	return s.tWaits
}

// ParallelWaitTime returns the wall-clock time during which at least one
// goroutine was waiting.
func (s *Stats) ParallelWaitTime() time.Duration {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	return s.pWaits
}

// LastReset returns the time of the last Reset (or of construction).
func (s *Stats) LastReset() time.Time {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()
	return s.lastReset
}
