package pnlldp

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pnetio/profinet-io-device/pneth"
	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnsched"
)

// Engine is the process-wide LLDP subsystem: one broadcaster and one
// single-port peer database (spec §4.3).
type Engine struct {
	cfg    Config
	sender pnmodel.EthernetSender

	scheduler       pnsched.Scheduler
	broadcastHandle pnsched.Handle

	peerMu sync.Mutex
	peer   PeerRecord

	diag       Diagnostics
	alarm      AlarmSender
	subLookup  SubmoduleLookup
	arProvider ARProvider
	ipProvider IPAddrProvider

	counters *pneth.Counters
	logger   *logrus.Entry

	linkUp bool
}

// NewEngine constructs the LLDP engine for one physical port.
func NewEngine(cfg Config, sender pnmodel.EthernetSender, scheduler pnsched.Scheduler,
	diag Diagnostics, alarm AlarmSender, subLookup SubmoduleLookup, arProvider ARProvider,
	ipProvider IPAddrProvider, counters *pneth.Counters, logger *logrus.Entry) *Engine {
	return &Engine{
		cfg:        cfg,
		sender:     sender,
		scheduler:  scheduler,
		diag:       diag,
		alarm:      alarm,
		subLookup:  subLookup,
		arProvider: arProvider,
		ipProvider: ipProvider,
		counters:   counters,
		logger:     logger,
	}
}

// SetLinkUp gates transmission and peer expectations on link state,
// mirroring the teacher's lldpIntfStateSlice/lldpUpIntfStateSlice split
// (lldp/server/globalInfo.go). A link transitioning down cancels any
// armed peer-expiry timer, since a peer cannot be legitimately expected
// while the link itself is down.
func (e *Engine) SetLinkUp(up bool) {
	e.linkUp = up
	if up {
		return
	}
	e.peerMu.Lock()
	handle := e.peer.timerHandle
	e.peer.setTimerHandle(nil)
	e.peerMu.Unlock()
	if handle != nil {
		handle.Stop()
	}
}

// Send builds and transmits one LLDP frame, unless suppressed by
// NotSendLLDPFrames (spec §4.3 lldp_send) or the link is down.
func (e *Engine) Send() error {
	if e.cfg.NotSendLLDPFrames || !e.linkUp {
		return nil
	}
	ip := [4]byte{}
	if e.ipProvider != nil {
		ip = e.ipProvider()
	}
	frame, err := e.buildFrame(ip)
	if err != nil {
		if e.logger != nil {
			e.logger.WithError(err).Error("pnlldp: build frame failed")
		}
		return err
	}
	n, err := e.sender.Send(frame)
	if err != nil || n <= 0 {
		if e.counters != nil {
			e.counters.IncErrors()
		}
		if e.logger != nil {
			e.logger.WithError(err).Error("pnlldp: send failed")
		}
		return err
	}
	if e.counters != nil {
		e.counters.AddOctets(n)
	}
	return nil
}

// StartBroadcast arms the periodic transmit timer (spec §4.3
// start_broadcast). Each firing re-arms itself unless suppression is in
// effect, in which case it self-cancels — mirroring the teacher's
// StartTxTimer rearm-from-callback idiom (lldp/server/pktHandler.go).
func (e *Engine) StartBroadcast() error {
	handle, err := e.scheduler.Schedule(BroadcastRate*time.Second, e.onBroadcastTick)
	if err != nil {
		return err
	}
	e.broadcastHandle = handle
	return nil
}

func (e *Engine) onBroadcastTick() {
	if e.cfg.NotSendLLDPFrames {
		return
	}
	_ = e.Send()
	if e.cfg.NotSendLLDPFrames {
		return
	}
	if e.broadcastHandle != nil {
		e.broadcastHandle.Reset(BroadcastRate * time.Second)
	}
}

// StopBroadcast cancels the periodic transmit timer.
func (e *Engine) StopBroadcast() {
	if e.broadcastHandle != nil {
		e.broadcastHandle.Stop()
	}
}

// onTTLReceived (re)arms the one-shot peer timeout timer (spec §4.3 "Peer
// timeout"), mirroring the teacher's CheckPeerEntry (lldp/packet/rx.go).
func (e *Engine) onTTLReceived(ttl uint16) {
	if !e.linkUp {
		return
	}
	e.peerMu.Lock()
	e.peer.TTL = ttl
	handle := e.peerTimerHandleLocked()
	e.peerMu.Unlock()

	d := time.Duration(ttl) * time.Second
	if handle == nil {
		h, err := e.scheduler.Schedule(d, e.onPeerExpired)
		if err != nil {
			if e.logger != nil {
				e.logger.WithError(err).Error("pnlldp: failed to arm peer timer")
			}
			return
		}
		e.peerMu.Lock()
		e.peer.setTimerHandle(h)
		e.peerMu.Unlock()
		return
	}
	handle.Stop()
	handle.Reset(d)
}

func (e *Engine) peerTimerHandleLocked() pnsched.Handle {
	return e.peer.timerHandle
}

func (e *Engine) onPeerExpired() {
	e.noPeerDetectedAlarm()
}

// IntfState is a read-only snapshot of the local port and its peer,
// mirroring the teacher's PopulateTLV/GetIntfState read path
// (lldp/server/state.go).
type IntfState struct {
	ChassisID     string
	PortID        string
	PeerChassisID string
	PeerPortID    string
	PeerAlias     string
	PeerTTL       uint16
	LinkUp        bool
}

// GetIntfState returns the current local/peer snapshot for diagnostics
// or CLI consumption.
func (e *Engine) GetIntfState() IntfState {
	e.peerMu.Lock()
	defer e.peerMu.Unlock()
	return IntfState{
		ChassisID:     e.cfg.ChassisID,
		PortID:        e.cfg.PortID,
		PeerChassisID: string(e.peer.PeerChassisID),
		PeerPortID:    string(e.peer.PeerPortID),
		PeerAlias:     e.peer.alias,
		PeerTTL:       e.peer.TTL,
		LinkUp:        e.linkUp,
	}
}
