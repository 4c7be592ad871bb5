package iostats

// The scoped timers bind one operation's started/finished pair to a value the
// caller releases with defer. Start and Stop are idempotent through the
// running flag, so an explicit early Stop followed by the deferred one counts
// the operation exactly once. A timer belongs to a single operation and is
// not safe for concurrent use.

// ReadTimer brackets a single read operation.
type ReadTimer struct {
	stats   *Stats
	running bool
}

// StartReadTimer notifies stats that a read of size bytes has started and
// returns the timer that will finish it.
func StartReadTimer(stats *Stats, size int64) *ReadTimer {
	t := &ReadTimer{stats: stats}
	t.Start(size)
	return t
}

// Start begins the operation if it is not already running.
func (t *ReadTimer) Start(size int64) {
	if t == nil || t.stats == nil || t.running {
		return
	}
	t.running = true
	t.stats.ReadStarted(size)
}

// Stop finishes the operation. Calling Stop more than once has no effect.
func (t *ReadTimer) Stop() {
	if t == nil || !t.running {
		return
	}
	t.stats.ReadFinished()
	t.running = false
}

// WriteTimer brackets a single write operation.
type WriteTimer struct {
	stats   *Stats
	running bool
}

// StartWriteTimer notifies stats that a write of size bytes has started and
// returns the timer that will finish it.
func StartWriteTimer(stats *Stats, size int64) *WriteTimer {
	t := &WriteTimer{stats: stats}
	t.Start(size)
	return t
}

// Start begins the operation if it is not already running.
func (t *WriteTimer) Start(size int64) {
	if t == nil || t.stats == nil || t.running {
		return
	}
	t.running = true
	t.stats.WriteStarted(size)
}

// Stop finishes the operation. Calling Stop more than once has no effect.
func (t *WriteTimer) Stop() {
	if t == nil || !t.running {
		return
	}
	t.stats.WriteFinished()
	t.running = false
}

// WaitTimer brackets a single wait period.
type WaitTimer struct {
	stats   *Stats
	running bool
}

// StartWaitTimer notifies stats that a wait period has started and returns
// the timer that will finish it.
func StartWaitTimer(stats *Stats) *WaitTimer {
	t := &WaitTimer{stats: stats}
	t.Start()
	return t
}

// Start begins the wait period if it is not already running.
func (t *WaitTimer) Start() {
	if t == nil || t.stats == nil || t.running {
		return
	}
	t.running = true
	t.stats.WaitStarted()
}

// Stop finishes the wait period. Calling Stop more than once has no effect.
func (t *WaitTimer) Stop() {
	if t == nil || !t.running {
		return
	}
	t.stats.WaitFinished()
	t.running = false
}
