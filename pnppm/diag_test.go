package pnppm

import (
	"testing"

	"github.com/pnetio/profinet-io-device/pnmodel"
)

func TestDumpStateAfterActivateAndOneSend(t *testing.T) {
	ar, _, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	sched.lastCB()

	dump, err := e.DumpState(ar, 0)
	if err != nil {
		t.Fatalf("DumpState: %v", err)
	}
	if dump.State != pnmodel.Run {
		t.Fatalf("expected Run state, got %v", dump.State)
	}
	if dump.TrxCnt != 1 {
		t.Fatalf("expected trx_cnt 1, got %d", dump.TrxCnt)
	}
	if dump.ErrCnt != 0 {
		t.Fatalf("expected err_cnt 0, got %d", dump.ErrCnt)
	}
	if !dump.FirstTransmit {
		t.Fatal("expected first_transmit true after one successful send")
	}
	if dump.SendBufferLength != 64 {
		t.Fatalf("expected send buffer length 64, got %d", dump.SendBufferLength)
	}
}

func TestDumpStateOutOfRangeCrepIsRejected(t *testing.T) {
	ar, _, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if _, err := e.DumpState(ar, 5); err == nil {
		t.Fatal("expected error for out-of-range crep")
	}
}
