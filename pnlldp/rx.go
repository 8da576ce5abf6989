package pnlldp

import (
	"fmt"

	"github.com/pnetio/profinet-io-device/pnwire"
)

// Recv decodes an incoming LLDP frame's TLVs starting at startOffset (the
// caller has already stripped the Ethernet header) and updates the peer
// record (spec §4.3 lldp_recv).
func (e *Engine) Recv(frame []byte, startOffset int) error {
	r := pnwire.NewReader(frame, startOffset)
	chassisIDStr := ""

	for {
		hdr, err := pnwire.ReadTLVHeader(r)
		if err != nil {
			return fmt.Errorf("pnlldp: read TLV header: %w", err)
		}
		if hdr.Type == pnwire.TLVTypeEnd {
			return nil
		}
		payload, err := r.GetBytes(int(hdr.Length))
		if err != nil {
			return fmt.Errorf("pnlldp: read TLV payload: %w", err)
		}

		switch hdr.Type {
		case pnwire.TLVTypeChassisID:
			if len(payload) < 1 {
				continue
			}
			e.peerMu.Lock()
			e.peer.PeerChassisID = append([]byte(nil), payload[1:]...)
			e.peer.PeerChassisIDLen = len(payload) - 1
			e.peerMu.Unlock()
			chassisIDStr = string(payload[1:])

		case pnwire.TLVTypePortID:
			if len(payload) < 1 {
				continue
			}
			portIDStr := string(payload[1:])
			e.peerMu.Lock()
			e.peer.PeerPortID = append([]byte(nil), payload[1:]...)
			e.peer.PeerPortIDLen = len(payload) - 1
			newAlias := computeAlias(portIDStr, chassisIDStr)
			changed := newAlias != e.peer.tempAlias
			e.peer.tempAlias = newAlias
			e.peerMu.Unlock()
			if changed {
				e.remoteMismatchAlarm()
			}

		case pnwire.TLVTypeTTL:
			// Read the full 16-bit big-endian TTL (spec §9 open question:
			// the original's single-byte read is a bug).
			if len(payload) < 2 {
				continue
			}
			ttl := uint16(payload[0])<<8 | uint16(payload[1])
			e.onTTLReceived(ttl)

		case pnwire.TLVTypeOrgSpec:
			e.decodeOrgSpecTLV(payload)

		case pnwire.TLVTypeMgmtAddr:
			// Skipped without parsing: no peer-record field carries it.

		default:
			// Unknown TLVs are skipped (spec §4.1).
		}
	}
}

func (e *Engine) decodeOrgSpecTLV(payload []byte) {
	if len(payload) < 4 {
		return
	}
	oui := [3]byte{payload[0], payload[1], payload[2]}
	subtype := payload[3]
	body := payload[4:]

	switch {
	case oui == pnwire.OUIProfinet && subtype == pnwire.ProfinetSubtypePortStatus:
		if len(body) < 4 {
			return
		}
		e.peerMu.Lock()
		e.peer.PeerPortStatus.RTClass2 = uint16(body[0])<<8 | uint16(body[1])
		e.peer.PeerPortStatus.RTClass3 = uint16(body[2])<<8 | uint16(body[3])
		e.peerMu.Unlock()

	case oui == pnwire.OUIProfinet && subtype == pnwire.ProfinetSubtypeChassisMAC:
		if len(body) < 6 {
			return
		}
		e.peerMu.Lock()
		e.peer.PeerMACAddr = append([]byte(nil), body[:6]...)
		e.peerMu.Unlock()

	case oui == pnwire.OUIIEEE8023 && subtype == pnwire.IEEESubtypeMACPhyConfig:
		if len(body) < 5 {
			return
		}
		e.peerMu.Lock()
		e.peer.PeerMACPhyConfig = MACPhyConfig{
			CapANeg: body[0],
			CapPHY:  uint16(body[1])<<8 | uint16(body[2]),
			MAUType: uint16(body[3])<<8 | uint16(body[4]),
		}
		e.peerMu.Unlock()
	}
}
