// Package pnmodel holds the connection/communication-relation data model
// shared by the PPM and LLDP engines: the AR, its IOCRs, the per-IOCR PPM
// record and the IODATA descriptors that map application data into a
// PPM's staging buffer.
package pnmodel

import (
	"net"
	"sync"
)

// IOCRType tags the four kinds of communication relation an AR can carry.
// PPM only operates on Input and MCProvider variants.
type IOCRType int

const (
	Input IOCRType = iota
	Output
	MCProvider
	MCConsumer
)

func (t IOCRType) String() string {
	switch t {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case MCProvider:
		return "MC-Provider"
	case MCConsumer:
		return "MC-Consumer"
	default:
		return "Unknown"
	}
}

// IsProvider reports whether PPM acts on IOCRs of this type.
func (t IOCRType) IsProvider() bool {
	return t == Input || t == MCProvider
}

// Data status bit positions (spec §3).
const (
	DataStatusBitState             byte = 1 << 0
	DataStatusBitRedundancy        byte = 1 << 1
	DataStatusBitDataValid         byte = 1 << 2
	DataStatusBitProviderState     byte = 1 << 4
	DataStatusBitProblemIndicator  byte = 1 << 5
)

// PPMState is the two-state PPM machine (spec §4.2).
type PPMState int

const (
	WaitStart PPMState = iota
	Run
)

func (s PPMState) String() string {
	if s == Run {
		return "RUN"
	}
	return "WAIT_START"
}

// VLANTag is the 802.1Q tag carried by every PPM frame.
type VLANTag struct {
	VID      uint16 // 0..4095
	Priority uint8  // 0..7
}

// IODATA maps one (api, slot, subslot) submodule onto byte ranges inside a
// PPM record's staging buffer.
type IODATA struct {
	APIID  uint32
	Slot   uint16
	Subslot uint16

	DataOffset int
	DataLength int
	IOPSOffset int
	IOPSLength int
	IOCSOffset int
	IOCSLength int

	InUse     bool
	DataAvail bool
}

// PPMRecord is the per-IOCR provider state described in spec §3. While the
// instance is active, BufferData and the payload region of SendBuffer are
// accessed under the owning Engine's buffer lock; the header and trailing
// status fields of SendBuffer are written without it.
type PPMRecord struct {
	State PPMState

	SendBuffer []byte
	BufferPos  int

	CycleCounterOffset    int
	DataStatusOffset      int
	TransferStatusOffset  int
	BufferLength          int

	BufferData []byte

	DataStatus     byte
	TransferStatus byte
	Cycle          uint16

	ControlIntervalUs             int64
	CompensatedControlIntervalUs int64

	FirstTransmit bool
	CiRunning     bool

	TrxCnt  uint64
	ErrCnt  uint64
	ErrLine int

	IODATA []*IODATA
}

// FindIODATA returns the descriptor matching (api, slot, subslot), if any.
func (r *PPMRecord) FindIODATA(api uint32, slot, subslot uint16) (*IODATA, bool) {
	for _, d := range r.IODATA {
		if d.InUse && d.APIID == api && d.Slot == slot && d.Subslot == subslot {
			return d, true
		}
	}
	return nil, false
}

// IOCR is one communication relation within an AR.
type IOCR struct {
	Type            IOCRType
	FrameID         uint16
	CSDULength      int
	SendClockFactor uint16
	ReductionRatio  uint16
	VLAN            VLANTag

	InitiatorMAC net.HardwareAddr // destination
	ResponderMAC net.HardwareAddr // source

	PPM *PPMRecord
}

// EthernetSender is the raw L2 send collaborator (spec §6 eth.send /
// eth.lldp_send). A return of n<=0 indicates failure.
type EthernetSender interface {
	Send(frame []byte) (int, error)
}

// APIDiff is one append-only entry recorded when the LLDP engine detects a
// missing peer for an expected submodule (spec §4.3 "no-peer-detected").
type APIDiff struct {
	Slot           uint16
	Subslot        uint16
	ModuleIdent    uint32
	SubmoduleIdent uint32
	Fault          bool
}

// AR is the connection this core writes classified errors onto. It is
// otherwise opaque and owned by the connection manager collaborator.
type AR struct {
	mu sync.Mutex

	IOCRs  []*IOCR
	InUse  bool
	Sender EthernetSender

	ErrClass string
	ErrCode  string

	apiDiffs []APIDiff
}

// SetError records a classified protocol fault (spec §7).
func (ar *AR) SetError(class, code string) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	ar.ErrClass = class
	ar.ErrCode = code
}

// Error returns the currently classified class/code pair.
func (ar *AR) Error() (class, code string) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return ar.ErrClass, ar.ErrCode
}

// AppendAPIDiff appends a diff entry. Diff arrays are append-only: the
// entry is written and the count grows in the same step, so no index is
// ever used past the last populated entry, and this append is the only
// mutator.
func (ar *AR) AppendAPIDiff(d APIDiff) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	ar.apiDiffs = append(ar.apiDiffs, d)
}

// APIDiffs returns a copy of the recorded diff entries.
func (ar *AR) APIDiffs() []APIDiff {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	out := make([]APIDiff, len(ar.apiDiffs))
	copy(out, ar.apiDiffs)
	return out
}
