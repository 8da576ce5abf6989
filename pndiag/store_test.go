package pndiag

import (
	"testing"

	"github.com/pnetio/profinet-io-device/pnlldp"
	"github.com/pnetio/profinet-io-device/pnmodel"
)

func TestUpdateFailsWithoutExistingRecord(t *testing.T) {
	s := NewStore(nil)
	ar := &pnmodel.AR{}
	item := pnlldp.DiagnosticItem{USI: "x", Slot: 0, Subslot: 0x8001}

	if err := s.Update(ar, item); err == nil {
		t.Fatal("expected Update to fail when no record exists yet")
	}
	if err := s.Add(ar, item); err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Appears = true
	if err := s.Update(ar, item); err != nil {
		t.Fatalf("Update after Add: %v", err)
	}

	items := s.Items(ar)
	if len(items) != 1 || !items[0].Appears {
		t.Fatalf("expected the updated record to be persisted, got %+v", items)
	}
}

func TestItemsAreScopedPerAR(t *testing.T) {
	s := NewStore(nil)
	ar1 := &pnmodel.AR{}
	ar2 := &pnmodel.AR{}
	item := pnlldp.DiagnosticItem{USI: "x"}

	_ = s.Add(ar1, item)
	if len(s.Items(ar2)) != 0 {
		t.Errorf("expected no records for an unrelated AR")
	}
	if len(s.Items(ar1)) != 1 {
		t.Errorf("expected one record for ar1")
	}
}
