package pnlldp

import "github.com/pnetio/profinet-io-device/pnmodel"

// emitDiagnosticAlarm is the alarm-emission helper factored out of the
// remote-mismatch and no-peer-detected paths, which otherwise duplicate
// the same body (spec §9 Design Notes).
func (e *Engine) emitDiagnosticAlarm(extType string, appears bool, recordDiff bool) {
	if e.arProvider == nil {
		return
	}
	ars := e.arProvider()
	anyInUse := false

	for _, ar := range ars {
		if !ar.InUse {
			continue
		}
		anyInUse = true

		item := DiagnosticItem{
			USI:               USIExtendedChannelDiagnosis,
			ChannelErrorType:  ChannelErrorRemoteMismatch,
			ExtendedErrorType: extType,
			API:               DAPAPI,
			Slot:              DAPSlot,
			Subslot:           Interface1Port0Subslot,
			Appears:           appears,
		}

		if recordDiff {
			var moduleIdent, submoduleIdent uint32
			if e.subLookup != nil {
				if sub, ok := e.subLookup(ar, DAPAPI, DAPSlot, Interface1Port0Subslot); ok {
					moduleIdent = sub.ModuleIdent
					submoduleIdent = sub.SubmoduleIdent
				}
			}
			ar.AppendAPIDiff(pnmodel.APIDiff{
				Slot:           DAPSlot,
				Subslot:        Interface1Port0Subslot,
				ModuleIdent:    moduleIdent,
				SubmoduleIdent: submoduleIdent,
				Fault:          true,
			})
		}

		if e.diag != nil {
			if err := e.diag.Update(ar, item); err != nil {
				_ = e.diag.Add(ar, item)
			}
		}
		if e.alarm != nil {
			e.alarm.SendPortChangeNotification(ar, item)
		}
	}

	if !anyInUse && extType == ExtPortIDMismatch {
		e.peerMu.Lock()
		e.peer.alias = e.peer.tempAlias
		e.peerMu.Unlock()
	}
}

// remoteMismatchAlarm is spec §4.3's "Remote mismatch" path, triggered
// whenever the received alias differs from the previous temporary alias.
func (e *Engine) remoteMismatchAlarm() {
	e.peerMu.Lock()
	appears := e.peer.tempAlias != e.peer.alias
	e.peerMu.Unlock()
	e.emitDiagnosticAlarm(ExtPortIDMismatch, appears, false)
}

// noPeerDetectedAlarm is spec §4.3's "No-peer-detected" path, triggered by
// TTL timer expiry.
func (e *Engine) noPeerDetectedAlarm() {
	e.emitDiagnosticAlarm(ExtNoPeerDetected, true, true)
}
