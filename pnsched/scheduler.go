// Package pnsched provides the two timer backends spec §5 describes: a
// preemptive OS-timer path (one-shot timers re-armed from their own
// callback) and a cooperative single-threaded scheduler path. Both satisfy
// the same Scheduler interface so the PPM and LLDP engines are written
// once against it.
package pnsched

import "time"

// Handle is a live, cancellable, re-armable timer.
type Handle interface {
	// Stop cancels the timer. A callback already in flight is not
	// interrupted.
	Stop()
	// Reset rearms the timer to fire once after d.
	Reset(d time.Duration)
}

// Scheduler creates one-shot timers that invoke cb after d elapses.
type Scheduler interface {
	Schedule(d time.Duration, cb func()) (Handle, error)
}

// osHandle wraps a time.Timer for the preemptive OS-timer path.
type osHandle struct {
	t *time.Timer
}

func (h *osHandle) Stop()              { h.t.Stop() }
func (h *osHandle) Reset(d time.Duration) { h.t.Reset(d) }

// OSScheduler is the preemptive path: each timer runs on its own OS timer
// goroutine and callbacks may run concurrently with application calls,
// exactly as spec §5 describes.
type OSScheduler struct{}

// NewOSScheduler returns a Scheduler backed by time.AfterFunc.
func NewOSScheduler() *OSScheduler { return &OSScheduler{} }

// Schedule arms a one-shot timer, mirroring the teacher's own
// StartTxTimer/time.AfterFunc rearm-from-callback pattern.
func (s *OSScheduler) Schedule(d time.Duration, cb func()) (Handle, error) {
	t := time.AfterFunc(d, cb)
	return &osHandle{t: t}, nil
}
