// Package pnppm implements the Provider Protocol Machine: the per-IOCR
// cyclic real-time transmitter described in spec §4.2. One Engine is
// shared process-wide; it owns the buffer lock and instance count that
// every activated PPM instance shares, mirroring the teacher's per-port
// LLDPGlobalInfo map guarded by a handful of process-wide fields
// (lldp/server/lldpdGlobal.go) generalised to PPM's stricter locking
// rules (spec §5).
package pnppm

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pnetio/profinet-io-device/pneth"
	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnsched"
)

// ConnectionManager is the cmsu.ppm_error_ind collaborator (spec §6):
// classified PPM faults during RUN are reported here.
type ConnectionManager interface {
	PPMErrorInd(ar *pnmodel.AR, class, code string)
}

// SchedulingModel selects which of spec §5's two scheduler behaviours the
// send-failure and rearm-failure paths follow.
type SchedulingModel int

const (
	Preemptive SchedulingModel = iota
	Cooperative
)

// Config carries the process-wide constants an Engine needs beyond its
// collaborators.
type Config struct {
	// StackCycleTimeUs is the compensated-delay grid unit (spec §4.2).
	StackCycleTimeUs int64
	Scheduling       SchedulingModel
}

type instanceKey struct {
	ar   *pnmodel.AR
	crep int
}

type instanceState struct {
	timer pnsched.Handle
}

// Engine is the process-wide PPM state of spec §3: instance_count and the
// buffer lock it gates, plus the collaborators every instance shares.
type Engine struct {
	cfg       Config
	scheduler pnsched.Scheduler
	clock     Clock
	connMgr   ConnectionManager
	logger    *logrus.Entry
	counters  *pneth.Counters

	countMu       sync.Mutex
	instanceCount int32
	bufLock       *sync.Mutex

	instMu    sync.Mutex
	instances map[instanceKey]*instanceState
}

// NewEngine constructs an Engine with instance_count = 0, matching PPM's
// init() contract.
func NewEngine(cfg Config, scheduler pnsched.Scheduler, clock Clock, connMgr ConnectionManager, counters *pneth.Counters, logger *logrus.Entry) *Engine {
	return &Engine{
		cfg:       cfg,
		scheduler: scheduler,
		clock:     clock,
		connMgr:   connMgr,
		counters:  counters,
		logger:    logger,
		instances: make(map[instanceKey]*instanceState),
	}
}

// InstanceCount reports the number of currently active PPM instances.
func (e *Engine) InstanceCount() int32 {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	return e.instanceCount
}

func (e *Engine) acquireInstance() {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	e.instanceCount++
	if e.instanceCount == 1 {
		e.bufLock = &sync.Mutex{}
	}
}

func (e *Engine) releaseInstance() {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	e.instanceCount--
	if e.instanceCount == 0 {
		e.bufLock = nil
	}
}

// Activate initialises and starts the PPM instance at IOCR index crep of
// ar (spec §4.2 activate()).
func (e *Engine) Activate(ar *pnmodel.AR, crep int) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	iocr := ar.IOCRs[crep]
	if !iocr.Type.IsProvider() {
		return fmt.Errorf("pnppm: activate called on non-provider IOCR type %s", iocr.Type)
	}
	rec := iocr.PPM
	if rec.State != pnmodel.WaitStart {
		ar.SetError(ErrClassPPM, ErrCodeInvalidState)
		return invalidState()
	}

	rec.BufferPos = HeaderLength
	rec.CycleCounterOffset = rec.BufferPos + iocr.CSDULength
	rec.DataStatusOffset = rec.CycleCounterOffset + 2
	rec.TransferStatusOffset = rec.DataStatusOffset + 1
	rec.BufferLength = rec.TransferStatusOffset + 1

	rec.SendBuffer = make([]byte, rec.BufferLength)
	if rec.BufferData == nil {
		rec.BufferData = make([]byte, iocr.CSDULength)
	}

	if err := writeFixedHeader(rec.SendBuffer, iocr); err != nil {
		return fmt.Errorf("pnppm: write fixed header: %w", err)
	}

	rec.DataStatus = pnmodel.DataStatusBitState | pnmodel.DataStatusBitDataValid | pnmodel.DataStatusBitProblemIndicator
	rec.TransferStatus = 0
	rec.Cycle = 0
	rec.FirstTransmit = false
	rec.TrxCnt = 0

	ratio := uint32(iocr.SendClockFactor) * uint32(iocr.ReductionRatio)
	rec.ControlIntervalUs = int64(ratio) * 1000 / 32
	rec.CompensatedControlIntervalUs = CompensatedDelay(rec.ControlIntervalUs, e.cfg.StackCycleTimeUs, e.cfg.Scheduling == Preemptive)

	e.acquireInstance()

	key := instanceKey{ar: ar, crep: crep}
	inst := &instanceState{}

	timer, err := e.scheduler.Schedule(microseconds(rec.CompensatedControlIntervalUs), func() {
		e.sendCycle(key)
	})
	if err != nil {
		e.releaseInstance()
		rec.SendBuffer = nil
		ar.SetError(ErrClassPPM, ErrCodeInvalid)
		e.connMgr.PPMErrorInd(ar, ErrClassPPM, ErrCodeInvalid)
		return invalid()
	}
	inst.timer = timer

	e.instMu.Lock()
	e.instances[key] = inst
	e.instMu.Unlock()

	rec.State = pnmodel.Run
	rec.CiRunning = true
	// The provider goes to the running state as soon as cyclic
	// transmission is armed, not only once the application sets it.
	rec.DataStatus |= pnmodel.DataStatusBitProviderState

	if e.logger != nil {
		e.logger.WithField("frame_id", iocr.FrameID).Info("ppm activated")
	}
	return nil
}

// Close stops cyclic transmission and returns the instance to WAIT_START
// (spec §4.2 close()).
func (e *Engine) Close(ar *pnmodel.AR, crep int) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	iocr := ar.IOCRs[crep]
	rec := iocr.PPM
	key := instanceKey{ar: ar, crep: crep}

	rec.CiRunning = false

	e.instMu.Lock()
	inst, ok := e.instances[key]
	delete(e.instances, key)
	e.instMu.Unlock()
	if ok && inst.timer != nil {
		inst.timer.Stop()
	}

	rec.SendBuffer = nil
	rec.State = pnmodel.WaitStart
	rec.DataStatus = 0

	e.releaseInstance()

	if e.logger != nil {
		e.logger.WithField("frame_id", iocr.FrameID).Info("ppm closed")
	}
	return nil
}

// sendCycle is the timer callback: copy staged data, patch the trailing
// fields, hand the buffer to the driver, and re-arm (spec §4.2 "Send
// step").
func (e *Engine) sendCycle(key instanceKey) {
	iocr := key.ar.IOCRs[key.crep]
	rec := iocr.PPM

	if !rec.CiRunning {
		return
	}

	e.instMu.Lock()
	inst, ok := e.instances[key]
	e.instMu.Unlock()
	if !ok {
		return
	}

	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
		copy(rec.SendBuffer[rec.BufferPos:rec.BufferPos+len(rec.BufferData)], rec.BufferData)
		bufLock.Unlock()
	}

	rec.Cycle = ComputeCycleCounter(e.clock.NowMicros(), uint32(iocr.SendClockFactor)*uint32(iocr.ReductionRatio))
	rec.SendBuffer[rec.CycleCounterOffset] = byte(rec.Cycle >> 8)
	rec.SendBuffer[rec.CycleCounterOffset+1] = byte(rec.Cycle)
	rec.SendBuffer[rec.DataStatusOffset] = rec.DataStatus
	rec.SendBuffer[rec.TransferStatusOffset] = rec.TransferStatus

	n, err := key.ar.Sender.Send(rec.SendBuffer)
	if err != nil || n <= 0 {
		e.counters.IncErrors()
		rec.ErrCnt++
		_, _, rec.ErrLine, _ = runtime.Caller(0)
		if e.cfg.Scheduling == Preemptive {
			inst.timer.Reset(microseconds(rec.CompensatedControlIntervalUs))
			return
		}
		key.ar.SetError(ErrClassPPM, ErrCodeInvalid)
		e.connMgr.PPMErrorInd(key.ar, ErrClassPPM, ErrCodeInvalid)
		return
	}

	e.counters.AddOctets(n)
	rec.TrxCnt++
	inst.timer.Reset(microseconds(rec.CompensatedControlIntervalUs))
	if !rec.FirstTransmit {
		rec.FirstTransmit = true
		if e.logger != nil {
			e.logger.WithField("frame_id", iocr.FrameID).Info("ppm first transmit succeeded")
		}
	}
}

func (e *Engine) currentBufLock() *sync.Mutex {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	return e.bufLock
}
