package pnppm

import "time"

// Clock supplies the "current stack time" the cycle-counter algorithm
// runs against (spec §4.2). Kept as a collaborator so tests can drive
// specific instants instead of wall-clock time.
type Clock interface {
	NowMicros() int64
}

// MonotonicClock measures elapsed microseconds since it was constructed,
// standing in for the free-running 31.25us hardware/stack tick this core
// treats as an external timer/scheduler primitive (spec §1, out of scope).
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts the clock at the current instant.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// NowMicros returns microseconds elapsed since construction.
func (c *MonotonicClock) NowMicros() int64 {
	return time.Since(c.start).Microseconds()
}

// FixedClock is a test double returning a fixed instant.
type FixedClock int64

// NowMicros implements Clock.
func (c FixedClock) NowMicros() int64 { return int64(c) }
