// Package pnlldp implements the LLDP engine: the periodic organisation-
// specific TLV broadcaster and the single-port peer database with
// TTL-driven expiry described in spec §4.3, grounded on the teacher's
// lldp/server (lldpdTx.go, lldpdGlobal.go) and lldp/packet (rx.go) files.
package pnlldp

import "net"

// Config is the LLDP configuration block of spec §3.
type Config struct {
	ChassisID string // empty means "use device MAC"
	PortID    string
	TTL       uint16

	RTClass2PortStatus uint16
	RTClass3PortStatus uint16

	CapANeg  uint8
	CapPHY   uint16
	MAUType  uint16

	DeviceMAC net.HardwareAddr

	// NotSendLLDPFrames suppresses transmission (spec §4.3 "configuration
	// boundary flag").
	NotSendLLDPFrames bool
}

// BroadcastRate is the default periodic transmit interval (spec §4.3:
// "implementation-chosen; typically 5s").
const BroadcastRate = 5 // seconds
