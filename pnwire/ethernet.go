package pnwire

import "net"

// EtherType values this stack cares about.
const (
	EtherTypeVLAN     uint16 = 0x8100
	EtherTypeProfinet uint16 = 0x8892
	EtherTypeLLDP     uint16 = 0x88CC
)

// HeaderLength is dst(6) + src(6) + VLAN tag(4) + EtherType(2) + frame ID(2),
// the fixed offset at which PPM payload begins (spec buffer_pos).
const HeaderLength = 6 + 6 + 4 + 2 + 2

// LLDPMulticastMAC is the reserved nearest-bridge multicast destination
// LLDP frames are always sent to.
var LLDPMulticastMAC = net.HardwareAddr{0x01, 0x80, 0xC2, 0x00, 0x00, 0x0E}

// WriteEthernetVLANHeader writes dst, src, an 802.1Q VLAN tag (vid 0..4095,
// pcp 0..7) and the EtherType, in that order, advancing a.
func WriteEthernetVLANHeader(a *Appender, dst, src net.HardwareAddr, vid uint16, pcp uint8, ethertype uint16) error {
	if err := a.PutBytes(padMAC(dst)); err != nil {
		return err
	}
	if err := a.PutBytes(padMAC(src)); err != nil {
		return err
	}
	if err := a.PutUint16(EtherTypeVLAN); err != nil {
		return err
	}
	tci := (uint16(pcp&0x7) << 13) | (vid & 0x0FFF)
	if err := a.PutUint16(tci); err != nil {
		return err
	}
	return a.PutUint16(ethertype)
}

// WriteEthernetHeader writes a plain (untagged) Ethernet header: dst, src,
// EtherType. LLDP frames carry no VLAN tag.
func WriteEthernetHeader(a *Appender, dst, src net.HardwareAddr, ethertype uint16) error {
	if err := a.PutBytes(padMAC(dst)); err != nil {
		return err
	}
	if err := a.PutBytes(padMAC(src)); err != nil {
		return err
	}
	return a.PutUint16(ethertype)
}

// WriteFrameID writes the 16-bit PROFINET frame ID.
func WriteFrameID(a *Appender, frameID uint16) error {
	return a.PutUint16(frameID)
}

// padMAC returns a 6-byte MAC, zero-padded/truncated defensively since
// net.HardwareAddr does not itself guarantee length 6.
func padMAC(mac net.HardwareAddr) []byte {
	b := make([]byte, 6)
	copy(b, mac)
	return b
}
