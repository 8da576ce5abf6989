package pnppm

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/pnetio/profinet-io-device/pneth"
	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnsched"
)

var testCounters pneth.Counters

type fakeHandle struct {
	resetCount int
	stopped    bool
}

func (h *fakeHandle) Stop()                    { h.stopped = true }
func (h *fakeHandle) Reset(time.Duration)      { h.resetCount++ }

type fakeScheduler struct {
	lastCB func()
	handle *fakeHandle
	failNext bool
}

func (s *fakeScheduler) Schedule(d time.Duration, cb func()) (pnsched.Handle, error) {
	if s.failNext {
		s.failNext = false
		return nil, errTimerInstall
	}
	s.lastCB = cb
	s.handle = &fakeHandle{}
	return s.handle, nil
}

var errTimerInstall = fmt.Errorf("fake: timer install failed")

type fakeSender struct {
	frames [][]byte
	fail   bool
}

func (s *fakeSender) Send(frame []byte) (int, error) {
	if s.fail {
		return 0, fmt.Errorf("fake: send failed")
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	s.frames = append(s.frames, cp)
	return len(frame), nil
}

type fakeConnMgr struct {
	calls []string
}

func (m *fakeConnMgr) PPMErrorInd(ar *pnmodel.AR, class, code string) {
	m.calls = append(m.calls, class+"/"+code)
}

func newTestIOCR() (*pnmodel.AR, *pnmodel.IOCR, *fakeSender) {
	initiator, _ := net.ParseMAC("AA:BB:CC:DD:EE:01")
	responder, _ := net.ParseMAC("11:22:33:44:55:66")
	iocr := &pnmodel.IOCR{
		Type:            pnmodel.Input,
		FrameID:         0x8001,
		CSDULength:      40,
		SendClockFactor: 32,
		ReductionRatio:  1,
		VLAN:            pnmodel.VLANTag{VID: 0, Priority: 6},
		InitiatorMAC:    initiator,
		ResponderMAC:    responder,
		PPM:             &pnmodel.PPMRecord{},
	}
	sender := &fakeSender{}
	ar := &pnmodel.AR{IOCRs: []*pnmodel.IOCR{iocr}, InUse: true, Sender: sender}
	return ar, iocr, sender
}

func newTestEngine(sched *fakeScheduler, connMgr *fakeConnMgr) *Engine {
	return NewEngine(
		Config{StackCycleTimeUs: 1000, Scheduling: Preemptive},
		sched,
		FixedClock(0),
		connMgr,
		&testCounters,
		nil,
	)
}

func TestActivateThenSingleSendProducesExpectedFrame(t *testing.T) {
	ar, _, sender := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	// simulate one timer tick
	sched.lastCB()

	if len(sender.frames) != 1 {
		t.Fatalf("expected 1 frame sent, got %d", len(sender.frames))
	}
	f := sender.frames[0]
	if len(f) != 64 {
		t.Fatalf("expected frame length 64, got %d", len(f))
	}
	wantDst := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0x01}
	wantSrc := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	for i := 0; i < 6; i++ {
		if f[i] != wantDst[i] {
			t.Fatalf("dst mac byte %d: got %x want %x", i, f[i], wantDst[i])
		}
		if f[6+i] != wantSrc[i] {
			t.Fatalf("src mac byte %d: got %x want %x", i, f[6+i], wantSrc[i])
		}
	}
	if f[12] != 0x81 || f[13] != 0x00 {
		t.Fatalf("expected VLAN TPID 0x8100, got %x%x", f[12], f[13])
	}
	if f[14] != 0xC0 || f[15] != 0x00 {
		t.Fatalf("expected TCI 0xC000, got %x%x", f[14], f[15])
	}
	if f[16] != 0x88 || f[17] != 0x92 {
		t.Fatalf("expected EtherType 0x8892, got %x%x", f[16], f[17])
	}
	if f[18] != 0x80 || f[19] != 0x01 {
		t.Fatalf("expected frame id 0x8001, got %x%x", f[18], f[19])
	}
	if f[60] != 0x00 || f[61] != 0x20 {
		t.Fatalf("expected cycle counter 32 at offset 60, got %x%x", f[60], f[61])
	}
	if f[62] != 0x35 {
		t.Fatalf("expected data status 0x35 at offset 62, got %x", f[62])
	}
	if f[63] != 0x00 {
		t.Fatalf("expected transfer status 0x00 at offset 63, got %x", f[63])
	}
}

func TestSetDataAndIOPSBeforeActivateIsRejected(t *testing.T) {
	ar, iocr, _ := newTestIOCR()
	iocr.PPM.IODATA = []*pnmodel.IODATA{{APIID: 0, Slot: 1, Subslot: 1, InUse: true, DataLength: 2, IOPSLength: 1}}
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	err := e.SetDataAndIOPS(ar, 0, 0, 1, 1, []byte{1, 2}, []byte{0x80})
	if err == nil {
		t.Fatal("expected error before activate")
	}
	class, code := ar.Error()
	if class != ErrClassPPM || code != ErrCodeInvalidState {
		t.Fatalf("expected PPM/INVALID_STATE, got %s/%s", class, code)
	}
}

func TestGetDataAndIOPSBeforeActivateIsRejected(t *testing.T) {
	ar, iocr, _ := newTestIOCR()
	iocr.PPM.IODATA = []*pnmodel.IODATA{{APIID: 0, Slot: 1, Subslot: 1, InUse: true, DataLength: 2, IOPSLength: 1}}
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	err := e.GetDataAndIOPS(ar, 0, 0, 1, 1, make([]byte, 2), make([]byte, 1))
	if err == nil {
		t.Fatal("expected error before activate")
	}
	class, code := ar.Error()
	if class != ErrClassPPM || code != ErrCodeInvalidState {
		t.Fatalf("expected PPM/INVALID_STATE, got %s/%s", class, code)
	}
}

func TestGetIOCSBeforeActivateIsRejected(t *testing.T) {
	ar, iocr, _ := newTestIOCR()
	iocr.PPM.IODATA = []*pnmodel.IODATA{{APIID: 0, Slot: 1, Subslot: 1, InUse: true, IOCSLength: 1}}
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	err := e.GetIOCS(ar, 0, 0, 1, 1, make([]byte, 1))
	if err == nil {
		t.Fatal("expected error before activate")
	}
	class, code := ar.Error()
	if class != ErrClassPPM || code != ErrCodeInvalidState {
		t.Fatalf("expected PPM/INVALID_STATE, got %s/%s", class, code)
	}
}

func TestCloseResetsInstanceState(t *testing.T) {
	ar, iocr, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if e.InstanceCount() != 1 {
		t.Fatalf("expected instance count 1, got %d", e.InstanceCount())
	}

	if err := e.Close(ar, 0); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if e.InstanceCount() != 0 {
		t.Fatalf("expected instance count 0, got %d", e.InstanceCount())
	}
	if iocr.PPM.State != pnmodel.WaitStart {
		t.Fatalf("expected state WAIT_START, got %s", iocr.PPM.State)
	}
	if iocr.PPM.DataStatus != 0 {
		t.Fatalf("expected data status reset to 0, got %x", iocr.PPM.DataStatus)
	}
	if !sched.handle.stopped {
		t.Fatal("expected timer to be stopped on close")
	}
}

func TestDoubleActivateRejected(t *testing.T) {
	ar, _, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("first activate failed: %v", err)
	}
	err := e.Activate(ar, 0)
	if err == nil {
		t.Fatal("expected second activate to fail")
	}
}

func TestSendFailureIncrementsErrCntAndRecordsLine(t *testing.T) {
	ar, iocr, sender := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	sender.fail = true

	sched.lastCB()

	if iocr.PPM.ErrCnt != 1 {
		t.Fatalf("expected err_cnt 1, got %d", iocr.PPM.ErrCnt)
	}
	if iocr.PPM.ErrLine == 0 {
		t.Fatalf("expected err_line to be recorded, got 0")
	}
	if iocr.PPM.TrxCnt != 0 {
		t.Fatalf("expected trx_cnt to stay 0 on a failed send, got %d", iocr.PPM.TrxCnt)
	}
}

func TestDataOpsRejectOutOfRangeCrep(t *testing.T) {
	ar, _, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if err := e.SetDataAndIOPS(ar, 5, 0, 1, 1, nil, nil); err == nil {
		t.Fatal("expected SetDataAndIOPS to reject an out-of-range crep")
	}
	if err := e.SetIOCS(ar, 5, 0, 1, 1, nil); err == nil {
		t.Fatal("expected SetIOCS to reject an out-of-range crep")
	}
	if err := e.GetDataAndIOPS(ar, 5, 0, 1, 1, nil, nil); err == nil {
		t.Fatal("expected GetDataAndIOPS to reject an out-of-range crep")
	}
	if err := e.GetIOCS(ar, 5, 0, 1, 1, nil); err == nil {
		t.Fatal("expected GetIOCS to reject an out-of-range crep")
	}
}

func TestBufLockExistsIffAnyInstanceActive(t *testing.T) {
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)

	if e.currentBufLock() != nil {
		t.Fatal("expected no buffer lock before any instance is activated")
	}

	ar1, _, _ := newTestIOCR()
	ar2, _, _ := newTestIOCR()

	if err := e.Activate(ar1, 0); err != nil {
		t.Fatalf("activate ar1: %v", err)
	}
	lock := e.currentBufLock()
	if lock == nil {
		t.Fatal("expected a buffer lock once the first instance is active")
	}

	if err := e.Activate(ar2, 0); err != nil {
		t.Fatalf("activate ar2: %v", err)
	}
	if e.currentBufLock() != lock {
		t.Fatal("expected the same buffer lock to be shared across instances")
	}

	if err := e.Close(ar1, 0); err != nil {
		t.Fatalf("close ar1: %v", err)
	}
	if e.currentBufLock() != lock {
		t.Fatal("expected the buffer lock to persist while one instance remains active")
	}

	if err := e.Close(ar2, 0); err != nil {
		t.Fatalf("close ar2: %v", err)
	}
	if e.currentBufLock() != nil {
		t.Fatal("expected the buffer lock to be released once the last instance closes")
	}
}

func TestSetProblemIndicatorClearsBitOnTrue(t *testing.T) {
	ar, iocr, _ := newTestIOCR()
	sched := &fakeScheduler{}
	connMgr := &fakeConnMgr{}
	e := newTestEngine(sched, connMgr)
	if err := e.Activate(ar, 0); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	e.SetProblemIndicator(ar, true)
	if iocr.PPM.DataStatus&pnmodel.DataStatusBitProblemIndicator != 0 {
		t.Fatal("expected problem indicator bit clear after SetProblemIndicator(true)")
	}
	e.SetProblemIndicator(ar, false)
	if iocr.PPM.DataStatus&pnmodel.DataStatusBitProblemIndicator == 0 {
		t.Fatal("expected problem indicator bit set after SetProblemIndicator(false)")
	}
}
