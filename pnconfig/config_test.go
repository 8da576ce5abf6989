package pnconfig

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func firstUpInterfaceName(t *testing.T) string {
	t.Helper()
	ifaces, err := net.Interfaces()
	if err != nil {
		t.Skipf("cannot list interfaces: %v", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 {
			return iface.Name
		}
	}
	t.Skip("no usable network interface on this host")
	return ""
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfigAppliesDefaults(t *testing.T) {
	iface := firstUpInterfaceName(t)
	path := writeConfig(t, `
profinet:
  interface: `+iface+`
  lldp:
    chassis_id: "device-1"
    port_id: "port-1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PPM.StackCycleTimeUs != 1000 {
		t.Errorf("expected default stack cycle time 1000, got %d", cfg.PPM.StackCycleTimeUs)
	}
	if cfg.PPM.Scheduling != "preemptive" {
		t.Errorf("expected default scheduling preemptive, got %q", cfg.PPM.Scheduling)
	}
	if cfg.LLDP.TTL != 20 {
		t.Errorf("expected default TTL 20, got %d", cfg.LLDP.TTL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsUnknownInterface(t *testing.T) {
	path := writeConfig(t, `
profinet:
  interface: does-not-exist-9999
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown interface")
	}
}

func TestLoadRejectsInvalidScheduling(t *testing.T) {
	iface := firstUpInterfaceName(t)
	path := writeConfig(t, `
profinet:
  interface: `+iface+`
  ppm:
    scheduling: "turbo"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid scheduling model")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	iface := firstUpInterfaceName(t)
	path := writeConfig(t, `
profinet:
  interface: `+iface+`
  log:
    level: "verbose"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}
