package pnppm

import "github.com/pnetio/profinet-io-device/pnmodel"

// StateDump is a point-in-time snapshot of one PPM instance's diagnostic
// fields, the same set the original stack's pf_ppm_show() prints for field
// diagnosis: state, error bookkeeping, timing, and buffer layout.
type StateDump struct {
	State pnmodel.PPMState

	ErrCnt  uint64
	ErrLine int

	FirstTransmit bool
	TrxCnt        uint64

	SendBufferLength int

	ControlIntervalUs            int64
	CompensatedControlIntervalUs int64
	Cycle                        uint16

	CiRunning      bool
	TransferStatus byte
	DataStatus     byte

	BufferLength int
	BufferPos    int
}

// DumpState returns the diagnostic snapshot of the PPM instance at IOCR
// index crep, for CLI/operator inspection. It never mutates state.
func (e *Engine) DumpState(ar *pnmodel.AR, crep int) (StateDump, error) {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return StateDump{}, invalid()
	}
	rec := ar.IOCRs[crep].PPM

	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
		defer bufLock.Unlock()
	}

	return StateDump{
		State:                        rec.State,
		ErrCnt:                       rec.ErrCnt,
		ErrLine:                      rec.ErrLine,
		FirstTransmit:                rec.FirstTransmit,
		TrxCnt:                       rec.TrxCnt,
		SendBufferLength:             len(rec.SendBuffer),
		ControlIntervalUs:            rec.ControlIntervalUs,
		CompensatedControlIntervalUs: rec.CompensatedControlIntervalUs,
		Cycle:                        rec.Cycle,
		CiRunning:                    rec.CiRunning,
		TransferStatus:               rec.TransferStatus,
		DataStatus:                   rec.DataStatus,
		BufferLength:                 rec.BufferLength,
		BufferPos:                    rec.BufferPos,
	}, nil
}

// LogState writes the diagnostic snapshot through the engine's logger at
// debug level, the same audience pf_ppm_show()'s printf dump served.
func (e *Engine) LogState(ar *pnmodel.AR, crep int) error {
	dump, err := e.DumpState(ar, crep)
	if err != nil {
		return err
	}
	if e.logger != nil {
		e.logger.WithField("state", dump.State).
			WithField("err_cnt", dump.ErrCnt).
			WithField("err_line", dump.ErrLine).
			WithField("first_transmit", dump.FirstTransmit).
			WithField("trx_cnt", dump.TrxCnt).
			WithField("control_interval_us", dump.ControlIntervalUs).
			WithField("compensated_control_interval_us", dump.CompensatedControlIntervalUs).
			WithField("cycle", dump.Cycle).
			WithField("ci_running", dump.CiRunning).
			WithField("transfer_status", dump.TransferStatus).
			WithField("data_status", dump.DataStatus).
			WithField("buffer_length", dump.BufferLength).
			WithField("buffer_pos", dump.BufferPos).
			Debug("ppm state dump")
	}
	return nil
}
