package pnsched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCooperativeSchedulerFiresMoreThanOnceAfterReset(t *testing.T) {
	s := NewCooperativeScheduler()
	var fires int32
	fired := make(chan struct{}, 8)

	handle, err := s.Schedule(5*time.Millisecond, func() {
		atomic.AddInt32(&fires, 1)
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the first firing")
	}

	handle.Reset(5 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the second firing after Reset")
	}

	if atomic.LoadInt32(&fires) < 2 {
		t.Fatalf("expected the callback to fire more than once, got %d", fires)
	}
}

func TestCooperativeSchedulerStopBeforeFirstFireNeverInvokesCallback(t *testing.T) {
	s := NewCooperativeScheduler()
	fired := make(chan struct{}, 1)

	handle, err := s.Schedule(50*time.Millisecond, func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	handle.Stop()

	select {
	case <-fired:
		t.Fatal("expected no callback after Stop before the first firing")
	case <-time.After(100 * time.Millisecond):
	}
}
