// Command tagbridge runs a PLC tag bridge instance.
//
// The bridge reads the PLC's flat tag catalog, folds it into a
// hierarchical address space, and keeps node values synchronized with
// the device. The wire protocol endpoint itself is provided by the
// host's server framework; this command drives the bridge core with
// either a simulated or a configured PLC and offers an interactive
// console for browsing and poking tags.
//
// Usage:
//
//	tagbridge [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-interactive       Start the interactive console
//	-event-log string  CBOR event capture file (overrides config)
//	-discover          Advertise the endpoint via mDNS (overrides config)
//
// Examples:
//
//	# Run against the built-in simulated PLC
//	tagbridge -interactive
//
//	# Run with a config file and event capture
//	tagbridge -config /etc/tagbridge/bridge.yaml -event-log bridge.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/config"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/service"
)

func main() {
	var (
		configFile  string
		logLevel    string
		interactive bool
		eventLog    string
		discover    bool
	)

	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&interactive, "interactive", false, "Start the interactive console")
	flag.StringVar(&eventLog, "event-log", "", "CBOR event capture file")
	flag.BoolVar(&discover, "discover", false, "Advertise the endpoint via mDNS")
	flag.Parse()

	logger := setupLogging(logLevel)

	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	if eventLog != "" {
		cfg.Log.File = eventLog
	}
	if discover {
		cfg.Discovery.Enabled = true
	}

	// The simulated PLC stands in for the device collaborator. A real
	// deployment swaps in a driver for cfg.PLC.Address here.
	provider := newSimCatalog()

	svc, err := service.NewBridgeService(cfg, provider, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "service: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	logger.Info("bridge started", "state", svc.State())

	if cfg.PLC.Simulate {
		go runSimulation(ctx, provider, cfg.PLC.SimulateInterval.Std())
	}

	if interactive {
		console, err := newConsole(svc, cancel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "console: %v\n", err)
			os.Exit(1)
		}
		console.Run(ctx)
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
		case <-ctx.Done():
		}
	}

	svc.Stop()
	logger.Info("goodbye")
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
