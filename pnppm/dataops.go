package pnppm

import (
	"fmt"

	"github.com/pnetio/profinet-io-device/pnmodel"
)

// SetDataAndIOPS stages application input data and its IOPS byte for one
// submodule (spec §4.2 set_data_and_iops).
func (e *Engine) SetDataAndIOPS(ar *pnmodel.AR, crep int, api uint32, slot, subslot uint16, data, iops []byte) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	rec := ar.IOCRs[crep].PPM
	d, found := rec.FindIODATA(api, slot, subslot)
	if !found {
		if e.logger != nil {
			e.logger.WithField("api", api).Debug("pnppm: no IODATA object for submodule")
		}
		return fmt.Errorf("pnppm: no IODATA object for api=%d slot=%d subslot=%d", api, slot, subslot)
	}
	if rec.State != pnmodel.Run {
		ar.SetError(ErrClassPPM, ErrCodeInvalidState)
		return invalidState()
	}
	if len(data) != d.DataLength || len(iops) != d.IOPSLength {
		if e.logger != nil {
			e.logger.Error("pnppm: set_data_and_iops length mismatch")
		}
		return fmt.Errorf("pnppm: length mismatch: data %d/%d iops %d/%d", len(data), d.DataLength, len(iops), d.IOPSLength)
	}

	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
	}
	copy(rec.BufferData[d.DataOffset:d.DataOffset+d.DataLength], data)
	copy(rec.BufferData[d.IOPSOffset:d.IOPSOffset+d.IOPSLength], iops)
	d.DataAvail = true
	if bufLock != nil {
		bufLock.Unlock()
	}
	return nil
}

// SetIOCS stages the consumer status byte(s) for one submodule (spec §4.2
// set_iocs). An IOCS length of zero succeeds silently.
func (e *Engine) SetIOCS(ar *pnmodel.AR, crep int, api uint32, slot, subslot uint16, iocs []byte) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	rec := ar.IOCRs[crep].PPM
	d, found := rec.FindIODATA(api, slot, subslot)
	if !found {
		if e.logger != nil {
			e.logger.WithField("api", api).Debug("pnppm: no IODATA object for submodule")
		}
		return fmt.Errorf("pnppm: no IODATA object for api=%d slot=%d subslot=%d", api, slot, subslot)
	}
	if d.IOCSLength == 0 {
		return nil
	}
	if rec.State != pnmodel.Run {
		ar.SetError(ErrClassPPM, ErrCodeInvalidState)
		return invalidState()
	}
	if len(iocs) != d.IOCSLength {
		if e.logger != nil {
			e.logger.Error("pnppm: set_iocs length mismatch")
		}
		return fmt.Errorf("pnppm: length mismatch: iocs %d/%d", len(iocs), d.IOCSLength)
	}

	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
	}
	copy(rec.BufferData[d.IOCSOffset:d.IOCSOffset+d.IOCSLength], iocs)
	if bufLock != nil {
		bufLock.Unlock()
	}
	return nil
}

// GetDataAndIOPS reads the current staged output data and IOPS for one
// submodule into caller-supplied buffers of exactly the declared capacity.
func (e *Engine) GetDataAndIOPS(ar *pnmodel.AR, crep int, api uint32, slot, subslot uint16, data, iops []byte) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	rec := ar.IOCRs[crep].PPM
	d, found := rec.FindIODATA(api, slot, subslot)
	if !found {
		return fmt.Errorf("pnppm: no IODATA object for api=%d slot=%d subslot=%d", api, slot, subslot)
	}
	if rec.State != pnmodel.Run {
		ar.SetError(ErrClassPPM, ErrCodeInvalidState)
		return invalidState()
	}
	if len(data) != d.DataLength || len(iops) != d.IOPSLength {
		return fmt.Errorf("pnppm: destination buffer capacity mismatch")
	}
	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
	}
	copy(data, rec.BufferData[d.DataOffset:d.DataOffset+d.DataLength])
	copy(iops, rec.BufferData[d.IOPSOffset:d.IOPSOffset+d.IOPSLength])
	if bufLock != nil {
		bufLock.Unlock()
	}
	return nil
}

// GetIOCS reads the current staged IOCS byte(s) for one submodule.
func (e *Engine) GetIOCS(ar *pnmodel.AR, crep int, api uint32, slot, subslot uint16, iocs []byte) error {
	if crep < 0 || crep >= len(ar.IOCRs) {
		return fmt.Errorf("pnppm: crep %d out of range", crep)
	}
	rec := ar.IOCRs[crep].PPM
	d, found := rec.FindIODATA(api, slot, subslot)
	if !found {
		return fmt.Errorf("pnppm: no IODATA object for api=%d slot=%d subslot=%d", api, slot, subslot)
	}
	if rec.State != pnmodel.Run {
		ar.SetError(ErrClassPPM, ErrCodeInvalidState)
		return invalidState()
	}
	if len(iocs) != d.IOCSLength {
		return fmt.Errorf("pnppm: destination buffer capacity mismatch")
	}
	bufLock := e.currentBufLock()
	if bufLock != nil {
		bufLock.Lock()
	}
	copy(iocs, rec.BufferData[d.IOCSOffset:d.IOCSOffset+d.IOCSLength])
	if bufLock != nil {
		bufLock.Unlock()
	}
	return nil
}

func providerRecords(ar *pnmodel.AR) []*pnmodel.PPMRecord {
	var out []*pnmodel.PPMRecord
	for _, iocr := range ar.IOCRs {
		if iocr.Type.IsProvider() {
			out = append(out, iocr.PPM)
		}
	}
	return out
}

func (e *Engine) mutateDataStatus(ar *pnmodel.AR, mutate func(byte) byte) {
	bufLock := e.currentBufLock()
	for _, rec := range providerRecords(ar) {
		if bufLock != nil {
			bufLock.Lock()
		}
		rec.DataStatus = mutate(rec.DataStatus)
		if bufLock != nil {
			bufLock.Unlock()
		}
	}
}

// SetDataStatusState mutates the STATE bit on every provider IOCR of ar.
func (e *Engine) SetDataStatusState(ar *pnmodel.AR, primary bool) {
	e.mutateDataStatus(ar, func(b byte) byte { return setBit(b, pnmodel.DataStatusBitState, primary) })
}

// SetDataStatusRedundancy mutates the REDUNDANCY bit.
func (e *Engine) SetDataStatusRedundancy(ar *pnmodel.AR, redundant bool) {
	e.mutateDataStatus(ar, func(b byte) byte { return setBit(b, pnmodel.DataStatusBitRedundancy, redundant) })
}

// SetDataStatusProvider mutates the PROVIDER_STATE bit.
func (e *Engine) SetDataStatusProvider(ar *pnmodel.AR, run bool) {
	e.mutateDataStatus(ar, func(b byte) byte { return setBit(b, pnmodel.DataStatusBitProviderState, run) })
}

// SetProblemIndicator mutates the PROBLEM_INDICATOR bit. Per spec §3, a
// true flag *clears* the bit (no problem); false sets it.
func (e *Engine) SetProblemIndicator(ar *pnmodel.AR, flag bool) {
	e.mutateDataStatus(ar, func(b byte) byte { return setBit(b, pnmodel.DataStatusBitProblemIndicator, !flag) })
}

// GetDataStatus returns the data_status byte of ar's first provider IOCR.
func (e *Engine) GetDataStatus(ar *pnmodel.AR) (byte, error) {
	recs := providerRecords(ar)
	if len(recs) == 0 {
		return 0, fmt.Errorf("pnppm: no provider IOCR on AR")
	}
	return recs[0].DataStatus, nil
}

func setBit(b byte, mask byte, set bool) byte {
	if set {
		return b | mask
	}
	return b &^ mask
}
