package pnppm

import "testing"

func TestComputeCycleCounterBelowRatio(t *testing.T) {
	got := ComputeCycleCounter(0, 32)
	if got != 32 {
		t.Fatalf("expected 32, got %d", got)
	}
}

func TestComputeCycleCounterSnapsDown(t *testing.T) {
	// scf*rr = 32, raw at t=1000us -> raw = 1000*4/125 = 32
	got := ComputeCycleCounter(1000, 32)
	if got != 32 {
		t.Fatalf("expected 32, got %d", got)
	}
	// t=1100us -> raw = 1100*4/125 = 35, snapped to 32
	got = ComputeCycleCounter(1100, 32)
	if got != 32 {
		t.Fatalf("expected 32, got %d", got)
	}
}

func TestComputeCycleCounterMultipleOfRatio(t *testing.T) {
	ratio := uint32(48)
	for _, us := range []int64{0, 500, 1234, 987654} {
		got := ComputeCycleCounter(us, ratio)
		if uint32(got)%ratio != 0 {
			t.Fatalf("cycle %d not a multiple of ratio %d (t=%d)", got, ratio, us)
		}
	}
}

func TestCompensatedDelayShortWantedIsOneTick(t *testing.T) {
	stack := int64(1000)
	got := CompensatedDelay(1500, stack, true)
	if got != stack {
		t.Fatalf("expected exactly one tick (%d), got %d", stack, got)
	}
}

func TestCompensatedDelayCooperativeSubtractsHalfTick(t *testing.T) {
	stack := int64(1000)
	preemptive := CompensatedDelay(1500, stack, true)
	cooperative := CompensatedDelay(1500, stack, false)
	if preemptive-cooperative != stack/2 {
		t.Fatalf("expected cooperative to be half a tick less, preemptive=%d cooperative=%d", preemptive, cooperative)
	}
}

func TestCompensatedDelayNeverBelowOneTick(t *testing.T) {
	stack := int64(1000)
	for _, wanted := range []int64{1, 100, 1000, 1500, 2500, 10000} {
		got := CompensatedDelay(wanted, stack, true)
		if got < stack {
			t.Fatalf("wanted=%d got=%d below one stack cycle %d", wanted, got, stack)
		}
	}
}
