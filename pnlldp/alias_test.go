package pnlldp

import "testing"

func TestComputeAliasWithDotUsesPortIDVerbatim(t *testing.T) {
	got := computeAlias("port-1.eth0", "chassis-A")
	if got != "port-1.eth0" {
		t.Errorf("expected port ID used verbatim, got %q", got)
	}
}

func TestComputeAliasWithoutDotAppendsChassisID(t *testing.T) {
	got := computeAlias("port-1", "chassis-A")
	if got != "port-1.chassis-A" {
		t.Errorf("expected port.chassis suffix, got %q", got)
	}
}
