// Package pnconfig handles static configuration loading with viper.
package pnconfig

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"
)

// DeviceConfig is the top-level static configuration, mapping to the
// `profinet:` root key in YAML.
type DeviceConfig struct {
	Interface string     `mapstructure:"interface"`
	PPM       PPMConfig  `mapstructure:"ppm"`
	LLDP      LLDPConfig `mapstructure:"lldp"`
	Log       LogConfig  `mapstructure:"log"`
}

// PPMConfig controls the cyclic provider engine.
type PPMConfig struct {
	StackCycleTimeUs int64  `mapstructure:"stack_cycle_time_us"`
	Scheduling       string `mapstructure:"scheduling"` // "preemptive" | "cooperative"
}

// LLDPConfig controls the LLDP engine.
type LLDPConfig struct {
	ChassisID             string `mapstructure:"chassis_id"`
	PortID                string `mapstructure:"port_id"`
	TTL                   uint16 `mapstructure:"ttl"`
	RTClass2PortStatus    uint16 `mapstructure:"rt_class2_port_status"`
	RTClass3PortStatus    uint16 `mapstructure:"rt_class3_port_status"`
	CapANeg            uint8  `mapstructure:"cap_aneg"`
	CapPHY             uint16 `mapstructure:"cap_phy"`
	MAUType            uint16 `mapstructure:"mau_type"`
	NotSendLLDPFrames  bool   `mapstructure:"not_send_lldp_frames"`
}

// LogConfig controls logrus output and lumberjack rotation.
type LogConfig struct {
	Level    string         `mapstructure:"level"`  // debug / info / warn / error
	Format   string         `mapstructure:"format"` // json / text
	File     string         `mapstructure:"file"`   // empty = stderr only
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig maps directly onto lumberjack.Logger's fields.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

type configRoot struct {
	Profinet DeviceConfig `mapstructure:"profinet"`
}

// Load reads configuration from path, applies defaults, and validates it.
func Load(path string) (*DeviceConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("pnconfig: read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("pnconfig: unmarshal config: %w", err)
	}
	cfg := root.Profinet

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("pnconfig: validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profinet.ppm.stack_cycle_time_us", 1000)
	v.SetDefault("profinet.ppm.scheduling", "preemptive")

	v.SetDefault("profinet.lldp.ttl", 20)
	v.SetDefault("profinet.lldp.rt_class2_port_status", 0)
	v.SetDefault("profinet.lldp.rt_class3_port_status", 0)
	v.SetDefault("profinet.lldp.not_send_lldp_frames", false)

	v.SetDefault("profinet.log.level", "info")
	v.SetDefault("profinet.log.format", "text")
	v.SetDefault("profinet.log.rotation.max_size_mb", 100)
	v.SetDefault("profinet.log.rotation.max_age_days", 30)
	v.SetDefault("profinet.log.rotation.max_backups", 5)
	v.SetDefault("profinet.log.rotation.compress", true)
}

func (cfg *DeviceConfig) validate() error {
	if cfg.Interface == "" {
		return fmt.Errorf("profinet.interface is required")
	}
	if _, err := net.InterfaceByName(cfg.Interface); err != nil {
		return fmt.Errorf("profinet.interface %q: %w", cfg.Interface, err)
	}
	switch cfg.PPM.Scheduling {
	case "preemptive", "cooperative":
	default:
		return fmt.Errorf("profinet.ppm.scheduling must be preemptive or cooperative, got %q", cfg.PPM.Scheduling)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s", cfg.Log.Format)
	}
	if cfg.PPM.StackCycleTimeUs <= 0 {
		return fmt.Errorf("profinet.ppm.stack_cycle_time_us must be positive")
	}
	return nil
}
