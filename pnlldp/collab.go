package pnlldp

import "github.com/pnetio/profinet-io-device/pnmodel"

// Diagnostic extended error types (spec §4.3).
const (
	ExtPortIDMismatch  = "PORTID_MISMATCH"
	ExtNoPeerDetected  = "NO_PEER_DETECTED"
)

// USIExtendedChannelDiagnosis is the diagnosis payload discriminator
// (spec glossary: USI) both alarm paths use.
const USIExtendedChannelDiagnosis = "EXTENDED_CHANNEL_DIAGNOSIS"

// ChannelErrorRemoteMismatch is the channel error type both alarm paths
// share; only ExtendedErrorType distinguishes port-mismatch from
// no-peer-detected (spec §4.3).
const ChannelErrorRemoteMismatch = "REMOTE_MISMATCH"

// DAP/port identifiers used by both alarm paths (spec §4.3: "slot = DAP
// identifier and subslot = interface-1 port-0 identifier").
const (
	DAPSlot              uint16 = 0
	Interface1Port0Subslot uint16 = 0x8001
	DAPAPI               uint32 = 0
)

// DiagnosticItem is the diagnosis record spec §4.3 asks the diag/alarm
// collaborators to add-or-update idempotently.
type DiagnosticItem struct {
	USI               string
	ChannelErrorType  string
	ExtendedErrorType string
	API               uint32
	Slot              uint16
	Subslot           uint16
	Appears           bool
}

// Diagnostics is the diag.update/diag.add collaborator pair (spec §6).
// Update must fail (so the caller falls back to Add) when no matching
// record exists yet.
type Diagnostics interface {
	Update(ar *pnmodel.AR, item DiagnosticItem) error
	Add(ar *pnmodel.AR, item DiagnosticItem) error
}

// AlarmSender is the alarm.send_port_change_notification collaborator.
type AlarmSender interface {
	SendPortChangeNotification(ar *pnmodel.AR, item DiagnosticItem)
}

// Submodule is the minimal cmdev.get_subslot_full result this core needs:
// enough to populate an APIDiff entry.
type Submodule struct {
	ModuleIdent    uint32
	SubmoduleIdent uint32
}

// SubmoduleLookup is the cmdev.get_subslot_full collaborator.
type SubmoduleLookup func(ar *pnmodel.AR, api uint32, slot, subslot uint16) (Submodule, bool)

// ARProvider enumerates the ARs the alarm paths must iterate (spec §4.3:
// "iterate all in-use ARs").
type ARProvider func() []*pnmodel.AR

// IPAddrProvider is the cmina.get_ipaddr collaborator used by the
// management address TLV.
type IPAddrProvider func() [4]byte
