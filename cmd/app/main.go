package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/hubertat/servicemaker"
	"github.com/pkg/errors"

	"github.com/hubertat/w1log"
	"github.com/hubertat/w1log/drivers"
)

var (
	Version string
	Build   string

	config      = flag.String("config", "", "path of the json configuration file, defaults are used when empty")
	flagInstall = flag.Bool("install", false, "Install service in os")
	flagVersion = flag.Bool("version", false, "print version and exit")

	w1Service = servicemaker.ServiceMaker{
		User:               "w1log",
		UserGroups:         []string{"gpio"},
		ServicePath:        "/etc/systemd/system/w1log.service",
		ServiceDescription: "w1log service: one-wire temperature sensor logger. github.com/hubertat/w1log",
		ExecDir:            "/srv/w1log",
		ExecName:           "w1log",
	}
)

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("w1log %s (build %s)\n", Version, Build)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "w1log",
	})

	if *flagInstall {
		err := w1Service.InstallService()
		if err != nil {
			logger.Fatal("failed to install service", "error", err)
		}
		logger.Info("service installed!")
		return
	}

	cfg, err := w1log.LoadConfig(*config)
	if err != nil {
		logger.Fatal("can't load config, will terminate", "config", *config, "error", err)
	}
	logger.SetLevel(cfg.Level())
	logger.Info("w1log started", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.LoadKernelModules {
		err = drivers.LoadKernelModules(ctx, drivers.Modprobe, cfg.KernelModules)
		if err != nil {
			logger.Warn("kernel modules not loaded, continuing", "error", err)
		}
	}

	fs := drivers.OsFS{}
	w1 := cfg.Wire(fs, logger)
	err = w1.Setup()
	if errors.Is(err, drivers.ErrNoSensorsFound) {
		logger.Error("No sensors found. Exiting.", "directory", cfg.BaseDirectory, "prefix", cfg.FamilyPrefix)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("failed to init sensors", "error", err)
	}
	defer w1.Close()

	sensors := w1.Sensors()
	logger.Infof("Found %d sensor(s).", len(sensors))
	for i, sensor := range sensors {
		addr, err := sensor.Address()
		if err != nil {
			logger.Debug("sensor", "column", i+1, "id", sensor, "note", err)
			continue
		}
		family, _ := sensor.Family()
		logger.Debug("sensor", "column", i+1, "id", sensor, "family", family, "address", fmt.Sprintf("%#016x", uint64(addr)))
	}

	poller, err := w1log.NewPoller(cfg, w1, fs, os.Stdout, logger)
	if err != nil {
		logger.Fatal("failed to create poller", "error", err)
	}

	err = poller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("polling stopped", "error", err)
	}
	logger.Info("shutting down")
}
