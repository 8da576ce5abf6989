package pnlldp

import (
	"net"
	"strings"

	"github.com/pnetio/profinet-io-device/pnsched"
)

// PortStatus carries the RTClass2/RTClass3 PROFINET port status bits
// received in the optional port-status org-specific TLV.
type PortStatus struct {
	RTClass2 uint16
	RTClass3 uint16
}

// MACPhyConfig carries the IEEE 802.3 MAC/PHY configuration TLV fields.
type MACPhyConfig struct {
	CapANeg uint8
	CapPHY  uint16
	MAUType uint16
}

// PeerRecord is the single-port peer database entry of spec §3. This
// implementation carries one physical port, matching the spec's stated
// Non-goal of a multi-port peer DB.
type PeerRecord struct {
	PeerChassisID    []byte
	PeerChassisIDLen int
	PeerPortID       []byte
	PeerPortIDLen    int

	// PeerDelay holds the four 32-bit link-delay measurements the p-net
	// peer record carries; this core's TLV catalogue (spec §4.1) never
	// assigns them a wire encoding, so they are populated only if a
	// future org-specific TLV decoder is added.
	PeerDelay [4]uint32

	PeerPortStatus   PortStatus
	PeerMACAddr      net.HardwareAddr
	PeerMACPhyConfig MACPhyConfig

	TTL uint16

	// tempAlias is the alias computed from the most recently received
	// Port ID/Chassis ID pair; alias is the persisted, "confirmed" value
	// (spec §4.3 remote-mismatch path).
	tempAlias   string
	alias       string
	timerHandle pnsched.Handle
}

func (p *PeerRecord) setTimerHandle(h pnsched.Handle) { p.timerHandle = h }

// Alias returns the persisted alias.
func (p *PeerRecord) Alias() string { return p.alias }

// TempAlias returns the most recently received alias.
func (p *PeerRecord) TempAlias() string { return p.tempAlias }

// computeAlias implements spec §3's derivation: if portID contains a dot
// it is used verbatim, otherwise it is suffixed with chassisID.
func computeAlias(portID, chassisID string) string {
	if strings.Contains(portID, ".") {
		return portID
	}
	return portID + "." + chassisID
}
