package pnppm

import (
	"time"

	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnwire"
)

// HeaderLength is the fixed Ethernet+VLAN+frame-ID header size every PPM
// frame carries (spec §3: 6+6+4+2+2 = 20).
const HeaderLength = pnwire.HeaderLength

// writeFixedHeader writes the destination/source MAC, VLAN tag, PROFINET
// EtherType and frame ID once, at activation time, and never again (spec
// §3: "written once at activation and never again").
func writeFixedHeader(buf []byte, iocr *pnmodel.IOCR) error {
	a := pnwire.NewAppender(buf)
	if err := pnwire.WriteEthernetVLANHeader(a, iocr.InitiatorMAC, iocr.ResponderMAC, iocr.VLAN.VID, iocr.VLAN.Priority, pnwire.EtherTypeProfinet); err != nil {
		return err
	}
	return pnwire.WriteFrameID(a, iocr.FrameID)
}

func microseconds(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
