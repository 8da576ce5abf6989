package pnlldp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pnetio/profinet-io-device/pneth"
	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnwire"
)

// TestLLDPSendMandatoryTLVOrderScenario exercises the concrete end-to-end
// scenario of an empty chassis ID (device MAC used instead), matching the
// exact byte layout of an LLDP frame emitted with that configuration.
func TestLLDPSendMandatoryTLVOrderScenario(t *testing.T) {
	deviceMAC, err := net.ParseMAC("02:00:00:00:00:01")
	require.NoError(t, err)

	var counters pneth.Counters
	e := NewEngine(
		Config{
			ChassisID: "",
			PortID:    "port-001",
			TTL:       20,
			DeviceMAC: deviceMAC,
		},
		nil, nil, nil, nil,
		func(ar *pnmodel.AR, api uint32, slot, subslot uint16) (Submodule, bool) { return Submodule{}, false },
		func() []*pnmodel.AR { return nil },
		func() [4]byte { return [4]byte{} },
		&counters,
		nil,
	)

	frame, err := e.buildFrame([4]byte{192, 168, 1, 50})
	require.NoError(t, err)

	require.Equal(t, pnwire.LLDPMulticastMAC, net.HardwareAddr(frame[0:6]))
	require.Equal(t, deviceMAC, net.HardwareAddr(frame[6:12]))
	require.Equal(t, []byte{0x88, 0xCC}, frame[12:14])

	r := pnwire.NewReader(frame, 14)

	hdr, err := pnwire.ReadTLVHeader(r)
	require.NoError(t, err)
	require.Equal(t, pnwire.TLVTypeChassisID, hdr.Type)
	require.EqualValues(t, 7, hdr.Length)
	body, err := r.GetBytes(int(hdr.Length))
	require.NoError(t, err)
	require.Equal(t, byte(pnwire.ChassisIDSubtypeMAC), body[0])
	require.Equal(t, []byte(deviceMAC), body[1:])

	hdr, err = pnwire.ReadTLVHeader(r)
	require.NoError(t, err)
	require.Equal(t, pnwire.TLVTypePortID, hdr.Type)
	require.EqualValues(t, 9, hdr.Length)
	body, err = r.GetBytes(int(hdr.Length))
	require.NoError(t, err)
	require.Equal(t, byte(pnwire.PortIDSubtypeLocal), body[0])
	require.Equal(t, "port-001", string(body[1:]))

	hdr, err = pnwire.ReadTLVHeader(r)
	require.NoError(t, err)
	require.Equal(t, pnwire.TLVTypeTTL, hdr.Type)
	require.EqualValues(t, 2, hdr.Length)
	body, err = r.GetBytes(int(hdr.Length))
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x14}, body)

	// Skip past the optional PROFINET/IEEE TLVs to the management TLV and
	// the terminating end-of-LLDPDU marker.
	var mgmtBody []byte
	for {
		hdr, err = pnwire.ReadTLVHeader(r)
		require.NoError(t, err)
		if hdr.Type == pnwire.TLVTypeEnd {
			break
		}
		body, err = r.GetBytes(int(hdr.Length))
		require.NoError(t, err)
		if hdr.Type == pnwire.TLVTypeMgmtAddr {
			mgmtBody = body
		}
	}
	require.NotNil(t, mgmtBody, "expected a management address TLV before the end marker")
	require.Equal(t, []byte{192, 168, 1, 50}, mgmtBody[2:6])
}
