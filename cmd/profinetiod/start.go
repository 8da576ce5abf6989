package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/pnetio/profinet-io-device/pnconfig"
	"github.com/pnetio/profinet-io-device/pndiag"
	"github.com/pnetio/profinet-io-device/pneth"
	"github.com/pnetio/profinet-io-device/pnlldp"
	"github.com/pnetio/profinet-io-device/pnmodel"
	"github.com/pnetio/profinet-io-device/pnppm"
	"github.com/pnetio/profinet-io-device/pnsched"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the PPM/LLDP daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStart()
	},
}

const (
	snapshotLen = int32(1522)
	promiscuous = true
	readTimeout = time.Second
	bpfFilter   = "ether proto 0x88cc or ether proto 0x8892"
)

func runStart() error {
	cfg, err := pnconfig.Load(configFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)

	iface, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return fmt.Errorf("profinetiod: resolve interface: %w", err)
	}

	handle, err := pcap.OpenLive(cfg.Interface, snapshotLen, promiscuous, readTimeout)
	if err != nil {
		return fmt.Errorf("profinetiod: open pcap handle on %s: %w", cfg.Interface, err)
	}
	defer handle.Close()
	if err := handle.SetBPFFilter(bpfFilter); err != nil {
		return fmt.Errorf("profinetiod: set BPF filter: %w", err)
	}

	sender := pneth.NewPcapSender(handle)

	var scheduler pnsched.Scheduler
	switch cfg.PPM.Scheduling {
	case "cooperative":
		scheduler = pnsched.NewCooperativeScheduler()
	default:
		scheduler = &pnsched.OSScheduler{}
	}

	diagStore := pndiag.NewStore(logger.WithField("component", "diag"))
	connMgr := &loggingConnMgr{logger: logger.WithField("component", "ppm")}

	ppmEngine := pnppm.NewEngine(
		pnppm.Config{
			StackCycleTimeUs: cfg.PPM.StackCycleTimeUs,
			Scheduling:       ppmSchedulingModel(cfg.PPM.Scheduling),
		},
		scheduler,
		pnppm.NewMonotonicClock(),
		connMgr,
		&sender.Counters,
		logger.WithField("component", "ppm"),
	)
	ars := &arRegistry{}

	lldpEngine := pnlldp.NewEngine(
		pnlldp.Config{
			ChassisID:          cfg.LLDP.ChassisID,
			PortID:             cfg.LLDP.PortID,
			TTL:                cfg.LLDP.TTL,
			RTClass2PortStatus: cfg.LLDP.RTClass2PortStatus,
			RTClass3PortStatus: cfg.LLDP.RTClass3PortStatus,
			CapANeg:            cfg.LLDP.CapANeg,
			CapPHY:             cfg.LLDP.CapPHY,
			MAUType:            cfg.LLDP.MAUType,
			DeviceMAC:          iface.HardwareAddr,
			NotSendLLDPFrames:  cfg.LLDP.NotSendLLDPFrames,
		},
		sender,
		scheduler,
		diagStore,
		diagStore,
		staticSubmoduleLookup,
		ars.Snapshot,
		ipv4Provider(iface),
		&sender.Counters,
		logger.WithField("component", "lldp"),
	)
	lldpEngine.SetLinkUp(true)

	if err := lldpEngine.StartBroadcast(); err != nil {
		return fmt.Errorf("profinetiod: start LLDP broadcast: %w", err)
	}
	defer lldpEngine.StopBroadcast()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	packets := gopacket.NewPacketSource(handle, layers.LayerTypeEthernet).Packets()
	logger.Info("profinetiod started")

	for {
		select {
		case <-sigCh:
			logger.Info("profinetiod shutting down")
			return nil
		case <-statsTicker.C:
			logger.WithFields(logrus.Fields{
				"ppm_instances": ppmEngine.InstanceCount(),
				"out_octets":    sender.Counters.OutOctets,
				"out_errors":    sender.Counters.OutErrors,
			}).Info("profinetiod stats")
		case pkt, ok := <-packets:
			if !ok {
				return nil
			}
			dispatchPacket(lldpEngine, pkt, logger)
		}
	}
}

func dispatchPacket(lldpEngine *pnlldp.Engine, pkt gopacket.Packet, logger *logrus.Entry) {
	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return
	}
	eth, _ := ethLayer.(*layers.Ethernet)
	if eth.EthernetType != layers.EthernetTypeLinkLayerDiscovery {
		return
	}
	if err := lldpEngine.Recv(pkt.Data(), 14); err != nil {
		logger.WithError(err).Debug("profinetiod: lldp recv failed")
	}
}

func ppmSchedulingModel(name string) pnppm.SchedulingModel {
	if name == "cooperative" {
		return pnppm.Cooperative
	}
	return pnppm.Preemptive
}

func ipv4Provider(iface *net.Interface) func() [4]byte {
	return func() [4]byte {
		var out [4]byte
		addrs, err := iface.Addrs()
		if err != nil {
			return out
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			copy(out[:], ip4)
			return out
		}
		return out
	}
}

// arRegistry is the ARProvider collaborator (spec §4.3: "iterate all
// in-use ARs"); the daemon itself never establishes ARs (CMDEV/CMRPC are
// out of scope, spec §1 Non-goals), so it always reports none in use.
type arRegistry struct{}

func (r *arRegistry) Snapshot() []*pnmodel.AR { return nil }

// staticSubmoduleLookup stands in for the cmdev.get_subslot_full
// collaborator, which requires full AR/module establishment this daemon
// does not implement.
func staticSubmoduleLookup(ar *pnmodel.AR, api uint32, slot, subslot uint16) (pnlldp.Submodule, bool) {
	return pnlldp.Submodule{}, false
}

type loggingConnMgr struct {
	logger *logrus.Entry
}

func (c *loggingConnMgr) PPMErrorInd(ar *pnmodel.AR, class, code string) {
	c.logger.WithFields(logrus.Fields{"class": class, "code": code}).Error("ppm error indication")
}

func newLogger(cfg pnconfig.LogConfig) *logrus.Entry {
	log := logrus.New()
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSizeMB,
			MaxAge:     cfg.Rotation.MaxAgeDays,
			MaxBackups: cfg.Rotation.MaxBackups,
			Compress:   cfg.Rotation.Compress,
		})
	}
	return logrus.NewEntry(log)
}
