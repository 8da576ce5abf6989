package pnlldp

import (
	"github.com/pnetio/profinet-io-device/pnwire"
)

// buildFrame constructs the full LLDP Ethernet frame described in spec
// §4.1/§4.3: mandatory TLVs in fixed order, then the PROFINET/IEEE
// optional TLVs, then the management TLV, then the end TLV.
func (e *Engine) buildFrame(ip [4]byte) ([]byte, error) {
	buf := make([]byte, pnwire.FrameBufferSize)
	a := pnwire.NewAppender(buf)

	if err := pnwire.WriteEthernetHeader(a, pnwire.LLDPMulticastMAC, e.cfg.DeviceMAC, pnwire.EtherTypeLLDP); err != nil {
		return nil, err
	}

	if err := writeChassisID(a, e.cfg); err != nil {
		return nil, err
	}
	if err := writePortID(a, e.cfg); err != nil {
		return nil, err
	}
	if err := pnwire.WriteTLVHeader(a, pnwire.TLVTypeTTL, 2); err != nil {
		return nil, err
	}
	if err := a.PutUint16(e.cfg.TTL); err != nil {
		return nil, err
	}

	if err := writePortStatusTLV(a, e.cfg); err != nil {
		return nil, err
	}
	if err := writeChassisMACTLV(a, e.cfg); err != nil {
		return nil, err
	}
	if err := writeMACPhyTLV(a, e.cfg); err != nil {
		return nil, err
	}
	if err := writeManagementTLV(a, ip); err != nil {
		return nil, err
	}

	if err := pnwire.WriteEndTLV(a); err != nil {
		return nil, err
	}

	return a.Bytes(), nil
}

func writeChassisID(a *pnwire.Appender, cfg Config) error {
	var subtype uint8
	var payload []byte
	if cfg.ChassisID == "" {
		subtype = pnwire.ChassisIDSubtypeMAC
		payload = []byte(cfg.DeviceMAC)
	} else {
		subtype = pnwire.ChassisIDSubtypeLocal
		payload = []byte(cfg.ChassisID)
	}
	body := append([]byte{subtype}, payload...)
	return pnwire.WriteTLV(a, pnwire.TLVTypeChassisID, body)
}

func writePortID(a *pnwire.Appender, cfg Config) error {
	body := append([]byte{pnwire.PortIDSubtypeLocal}, []byte(cfg.PortID)...)
	return pnwire.WriteTLV(a, pnwire.TLVTypePortID, body)
}

func writePortStatusTLV(a *pnwire.Appender, cfg Config) error {
	payload := make([]byte, 0, 5)
	payload = append(payload, pnwire.ProfinetSubtypePortStatus)
	payload = appendUint16(payload, cfg.RTClass2PortStatus)
	payload = appendUint16(payload, cfg.RTClass3PortStatus)
	return pnwire.WriteOrgSpecTLV(a, pnwire.OUIProfinet, payload)
}

func writeChassisMACTLV(a *pnwire.Appender, cfg Config) error {
	payload := make([]byte, 0, 7)
	payload = append(payload, pnwire.ProfinetSubtypeChassisMAC)
	payload = append(payload, []byte(cfg.DeviceMAC)...)
	return pnwire.WriteOrgSpecTLV(a, pnwire.OUIProfinet, payload)
}

func writeMACPhyTLV(a *pnwire.Appender, cfg Config) error {
	payload := make([]byte, 0, 6)
	payload = append(payload, pnwire.IEEESubtypeMACPhyConfig)
	payload = append(payload, cfg.CapANeg)
	payload = appendUint16(payload, cfg.CapPHY)
	payload = appendUint16(payload, cfg.MAUType)
	return pnwire.WriteOrgSpecTLV(a, pnwire.OUIIEEE8023, payload)
}

func writeManagementTLV(a *pnwire.Appender, ip [4]byte) error {
	payload := make([]byte, 0, 12)
	payload = append(payload, 5) // address string length
	payload = append(payload, 1) // address subtype: IPv4
	payload = append(payload, ip[:]...)
	payload = append(payload, 1)       // interface subtype
	payload = appendUint32(payload, 0) // interface number
	payload = append(payload, 0)       // OID length
	return pnwire.WriteTLV(a, pnwire.TLVTypeMgmtAddr, payload)
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
