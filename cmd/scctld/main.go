package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dspctl/scosc/config"
	"github.com/dspctl/scosc/engine"
	"github.com/dspctl/scosc/stats"
)

func main() {
	c := &config.Config{
		StaticConfig: config.StaticConfig{
			LogLevel:       "warning",
			ReceivePort:    0,
			EngineHost:     "127.0.0.1",
			EnginePort:     57110,
			MonitoringPort: 8888,
			PidFile:        "/var/run/scctld.pid",
		},
		DynamicConfig: config.Default(),
	}

	var (
		interpreterHost string
		interpreterPort int
	)

	flag.StringVar(&c.LogLevel, "loglevel", c.LogLevel, "Set a log level. Can be: debug, info, warning, error")
	flag.IntVar(&c.ReceivePort, "receiveport", c.ReceivePort, "Local UDP port to bind. 0 selects an ephemeral port")
	flag.StringVar(&c.EngineHost, "enginehost", c.EngineHost, "Host the audio engine is listening on")
	flag.IntVar(&c.EnginePort, "engineport", c.EnginePort, "Port the audio engine is listening on")
	flag.StringVar(&interpreterHost, "interpreterhost", "", "Host the language interpreter is listening on, if any")
	flag.IntVar(&interpreterPort, "interpreterport", 57120, "Port the language interpreter is listening on")
	flag.IntVar(&c.MonitoringPort, "monitoringport", c.MonitoringPort, "Port to serve /metrics on")
	flag.IntVar(&c.DSCP, "dscp", 0, "DSCP for outgoing packets, valid values are between 0-63")
	flag.StringVar(&c.ConfigFile, "config", "", "Path to a YAML config with dynamic settings")
	flag.StringVar(&c.PidFile, "pidfile", c.PidFile, "Pid file location")
	flag.Parse()

	switch c.LogLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("Unrecognized log level: %v", c.LogLevel)
	}

	if c.ConfigFile != "" {
		dc, err := config.ReadDynamicConfig(c.ConfigFile)
		if err != nil {
			log.Fatal(err)
		}
		c.DynamicConfig = *dc
	}

	if c.DSCP < 0 || c.DSCP > 63 {
		log.Fatalf("Unsupported DSCP value %v", c.DSCP)
	}

	c.InterpreterHost = interpreterHost
	c.InterpreterPort = interpreterPort

	if err := c.CreatePidFile(); err != nil {
		log.Warningf("failed to write pid file: %v", err)
	}
	defer func() { _ = c.DeletePidFile() }()

	promStats := stats.NewPrometheusStats()
	exporter := stats.NewExporter(promStats, c.MonitoringPort)

	srv, err := engine.New(*c, engine.WithStats(promStats))
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("scctld: received shutdown signal")
		cancel()
	}()

	go func() {
		if err := exporter.Start(ctx); err != nil {
			log.WithError(err).Error("scctld: metrics exporter exited")
		}
	}()

	srv.Start(ctx)
	if err := srv.Connect(c.DynamicConfig.DefaultTimeout()); err != nil {
		log.Fatalf("failed to connect to engine: %v", err)
	}
	log.Infof("connected to engine at %s:%d as client %d (local %s)", c.EngineHost, c.EnginePort, srv.ClientID(), srv.LocalAddr())

	<-ctx.Done()

	if err := srv.Close(); err != nil {
		log.Warningf("error during shutdown: %v", err)
	}
	fmt.Println("scctld: shut down")
}
