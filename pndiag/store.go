// Package pndiag is an in-memory reference implementation of the
// pnlldp.Diagnostics and pnlldp.AlarmSender collaborators, grounded on
// the teacher's map-plus-RWMutex per-port state idiom
// (lldp/server/lldpdGlobal.go's LLDPServer.lldpGblInfo).
package pndiag

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pnetio/profinet-io-device/pnlldp"
	"github.com/pnetio/profinet-io-device/pnmodel"
)

type key struct {
	ar      *pnmodel.AR
	api     uint32
	slot    uint16
	subslot uint16
	usi     string
}

// Store is an in-memory diagnosis record table. It satisfies both
// pnlldp.Diagnostics and pnlldp.AlarmSender, standing in for the
// diag/alarm collaborators of spec §6/§4.3 in tests and the daemon.
type Store struct {
	mu      sync.RWMutex
	records map[key]pnlldp.DiagnosticItem
	logger  *logrus.Entry
}

// NewStore constructs an empty diagnosis store.
func NewStore(logger *logrus.Entry) *Store {
	return &Store{
		records: make(map[key]pnlldp.DiagnosticItem),
		logger:  logger,
	}
}

func recordKey(ar *pnmodel.AR, item pnlldp.DiagnosticItem) key {
	return key{ar: ar, api: item.API, slot: item.Slot, subslot: item.Subslot, usi: item.USI}
}

// Update overwrites an existing record, returning an error if none
// exists yet — the caller (pnlldp.Engine.emitDiagnosticAlarm) falls back
// to Add in that case, matching the diag.update/diag.add pair of spec §6.
func (s *Store) Update(ar *pnmodel.AR, item pnlldp.DiagnosticItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey(ar, item)
	if _, ok := s.records[k]; !ok {
		return errNoRecord
	}
	s.records[k] = item
	return nil
}

// Add inserts a new record, always succeeding.
func (s *Store) Add(ar *pnmodel.AR, item pnlldp.DiagnosticItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey(ar, item)] = item
	return nil
}

// Items returns a snapshot of every diagnosis record currently held for
// ar, for use by tests and by a future acyclic read API.
func (s *Store) Items(ar *pnmodel.AR) []pnlldp.DiagnosticItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pnlldp.DiagnosticItem
	for k, v := range s.records {
		if k.ar == ar {
			out = append(out, v)
		}
	}
	return out
}

// SendPortChangeNotification logs the notification. A real controller
// integration would forward this over the AR's alarm channel; this core
// carries no such transport (spec Non-goals), so the reference
// implementation just records it for observability.
func (s *Store) SendPortChangeNotification(ar *pnmodel.AR, item pnlldp.DiagnosticItem) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"usi":          item.USI,
		"channelError": item.ChannelErrorType,
		"extendedType": item.ExtendedErrorType,
		"appears":      item.Appears,
		"slot":         item.Slot,
		"subslot":      item.Subslot,
	}).Info("pndiag: port change notification")
}

var errNoRecord = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "pndiag: no matching diagnosis record" }
