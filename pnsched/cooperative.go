package pnsched

import (
	"sync"
	"time"

	"github.com/thinkgos/timing/v3"
)

// CooperativeScheduler is the single-threaded software scheduler path of
// spec §5: PPM send and application calls are meant to be serialised on
// one scheduling loop. It is built on the hashed timing wheel already
// pulled in by the pack's own fieldbus stack (things-go-go-modbus's
// mb.Client, which arms per-request timeouts with timing.NewTimer/
// timing.Add on a package-wide wheel) instead of the OS timer thread pool
// the preemptive path uses.
type CooperativeScheduler struct{}

// NewCooperativeScheduler returns a Scheduler backed by a timing wheel
// rather than per-timer OS threads.
func NewCooperativeScheduler() *CooperativeScheduler {
	return &CooperativeScheduler{}
}

type wheelHandle struct {
	mu sync.Mutex
	tm *timing.Timer
}

func (h *wheelHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	timing.Remove(h.tm)
}

func (h *wheelHandle) Reset(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	timing.Add(h.tm, d)
}

// Schedule arms tm to invoke cb on every expiry, the same way
// things-go-go-modbus's mb.Client drives its scan-rate requests: a job
// function attached with WithJobFunc, rearmed by calling timing.Add again
// from within the callback or from Reset. The wheel invokes the job
// itself, so there is no forwarding goroutine to leak when the timer is
// stopped before it ever fires.
func (s *CooperativeScheduler) Schedule(d time.Duration, cb func()) (Handle, error) {
	tm := timing.NewTimer()
	h := &wheelHandle{tm: tm}
	tm.WithJobFunc(cb)
	timing.Add(tm, d)
	return h, nil
}
