// Package iostats aggregates statistics about concurrent read, write and
// wait operations: operation counts, byte volumes, serial time (the sum of
// every operation's own duration) and parallel time (the wall-clock measure
// of the union of in-flight intervals per category).
//
// The parallel times are maintained incrementally in O(1) space: at every
// start or finish event the aggregator accrues elapsed-time-since-last-event
// weighted by the active count, so no interval list is ever materialized.
//
// Stats is safe for use from any number of goroutines. Every *Started call
// must be paired with exactly one *Finished call on the same category;
// the scoped timers (ReadTimer, WriteTimer, WaitTimer) enforce that pairing
// for callers with multiple exit paths.
package iostats
