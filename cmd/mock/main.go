package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/w1log"
	"github.com/hubertat/w1log/drivers"
)

const mockReadings = 500

var (
	Version string

	logFile  = flag.String("log", "./mock_temperature_log", "log file to append to")
	interval = flag.Duration("interval", 2*time.Second, "polling interval")
	verbose  = flag.Bool("verbose", false, "print every simulated device file read")
)

// mockSensor walks a temperature around start, sometimes reporting an
// unfinished conversion first.
func mockSensor(start int64, broken bool) (contents []string) {
	milli := start
	for i := 0; i < mockReadings; i++ {
		raw := fmt.Sprintf("%02x 01 4b 46 7f ff 0e 10 57", byte(milli/62))
		if rand.Intn(4) == 0 {
			contents = append(contents, raw+" : crc=57 NO\n"+raw+" t=85000\n")
		}
		if broken {
			contents = append(contents, raw+" : crc=57 YES\n"+raw+"\n")
		} else {
			contents = append(contents, fmt.Sprintf("%s : crc=57 YES\n%s t=%d\n", raw, raw, milli))
		}
		milli += int64(rand.Intn(251) - 125)
	}
	return
}

func main() {
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "w1log mock"})
	logger.Info("mock instance for testing purposes, no one-wire bus needed", "version", Version)

	cfg := w1log.DefaultConfig()
	cfg.LogFile = *logFile
	cfg.Interval = w1log.Duration{Duration: *interval}
	cfg.LoadKernelModules = false

	sensors := map[drivers.SensorId]int64{
		"28-0000075c4a1b": 21500,
		"28-000008e1f3c2": 19875,
		"28-00000bad0001": 0,
	}
	fs := drivers.NewMockFS()
	fs.SetDir(cfg.BaseDirectory, "w1_bus_master1", "28-0000075c4a1b", "28-000008e1f3c2", "28-00000bad0001")
	for id, start := range sensors {
		fs.SetFile(filepath.Join(cfg.BaseDirectory, string(id), cfg.DeviceFile), mockSensor(start, start == 0)...)
	}
	if *verbose {
		fs.MonitorReads(os.Stdout)
	}

	w1 := cfg.Wire(fs, logger)
	err := w1.Setup()
	if err != nil {
		logger.Fatal("mock setup failed", "error", err)
	}
	logger.Infof("Found %d sensor(s).", len(w1.Sensors()))

	// the log file is real, only the sensors are simulated
	poller, err := w1log.NewPoller(cfg, w1, drivers.OsFS{}, os.Stdout, logger)
	if err != nil {
		logger.Fatal("failed to create poller", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = poller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("polling stopped", "error", err)
	}
}
