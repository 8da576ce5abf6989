// Package pneth adapts the raw L2 channel (spec §6: eth.send,
// eth.lldp_send) to a pcap handle, and carries the process-wide interface
// statistics record the PPM and LLDP engines increment.
package pneth

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket/pcap"
)

// Counters is the ifOutOctets/ifOutErrors record spec §6 exposes.
type Counters struct {
	OutOctets uint64
	OutErrors uint64
}

// AddOctets atomically increments OutOctets by n.
func (c *Counters) AddOctets(n int) { atomic.AddUint64(&c.OutOctets, uint64(n)) }

// IncErrors atomically increments OutErrors.
func (c *Counters) IncErrors() { atomic.AddUint64(&c.OutErrors, 1) }

// PcapSender writes frames to a live pcap handle, serialising writers the
// way the teacher's WritePacket/PcapHdlLock pair does (lldp/server/
// lldpdTx.go, lldp/server/pktHandler.go).
type PcapSender struct {
	mu     sync.Mutex
	handle *pcap.Handle
	Counters
}

// NewPcapSender wraps an already-open pcap handle for one port.
func NewPcapSender(handle *pcap.Handle) *PcapSender {
	return &PcapSender{handle: handle}
}

// Send writes frame to the wire. It does not touch Counters itself; the
// engines that call it increment them from the result.
func (s *PcapSender) Send(frame []byte) (int, error) {
	s.mu.Lock()
	err := s.handle.WritePacketData(frame)
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("pneth: write packet data: %w", err)
	}
	return len(frame), nil
}
