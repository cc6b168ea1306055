package w1log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	if cfg.Interval.Duration != 10*time.Second {
		t.Errorf("Interval = %v; want 10s", cfg.Interval)
	}
	if cfg.RetryDelay.Duration != 200*time.Millisecond {
		t.Errorf("RetryDelay = %v; want 200ms", cfg.RetryDelay)
	}
	assertInts(t, cfg.Rounding, 3)
	assertInts(t, cfg.MaxAttempts, 0)
	assertStrings(t, cfg.LogFile, "~/temperature_log")
	assertStrings(t, cfg.BaseDirectory, "/sys/bus/w1/devices")
	assertStrings(t, cfg.DeviceFile, "w1_slave")
	assertStrings(t, cfg.FamilyPrefix, "28")
	if !cfg.LoadKernelModules || len(cfg.KernelModules) != 2 {
		t.Errorf("expected w1-gpio and w1-therm to be loaded, got %v %v", cfg.LoadKernelModules, cfg.KernelModules)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `{
	"Interval": "1m30s",
	"LogFile": "/tmp/temps.tsv",
	"Rounding": 1,
	"MaxAttempts": 50,
	"LoadKernelModules": false,
	"LogLevel": "debug"
}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Interval.Duration != 90*time.Second {
		t.Errorf("Interval = %v; want 1m30s", cfg.Interval)
	}
	assertStrings(t, cfg.LogFile, "/tmp/temps.tsv")
	assertInts(t, cfg.Rounding, 1)
	assertInts(t, cfg.MaxAttempts, 50)
	assertStrings(t, cfg.DeviceFile, "w1_slave")
	if cfg.LoadKernelModules {
		t.Error("LoadKernelModules should be overridden to false")
	}
	if cfg.Level() != log.DebugLevel {
		t.Errorf("Level() = %v; want debug", cfg.Level())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad json", `{"Interval": `},
		{"numeric duration", `{"Interval": 10}`},
		{"bad duration", `{"Interval": "ten seconds"}`},
		{"zero interval", `{"Interval": "0s"}`},
		{"negative rounding", `{"Rounding": -1}`},
		{"huge rounding", `{"Rounding": 12}`},
		{"empty log file", `{"LogFile": ""}`},
		{"empty prefix", `{"FamilyPrefix": ""}`},
		{"negative attempts", `{"MaxAttempts": -3}`},
		{"zero retry delay", `{"RetryDelay": "0ms"}`},
		{"unknown level", `{"LogLevel": "chatty"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, c.content)); err == nil {
				t.Errorf("expected error for %s", c.content)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLogFilePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg := DefaultConfig()
	got, err := cfg.LogFilePath()
	if err != nil {
		t.Fatal(err)
	}
	assertStrings(t, got, filepath.Join(home, "temperature_log"))

	cfg.LogFile = "/var/log/w1"
	got, _ = cfg.LogFilePath()
	assertStrings(t, got, "/var/log/w1")

	cfg.LogFile = "~user/log"
	got, _ = cfg.LogFilePath()
	assertStrings(t, got, "~user/log")
}

func TestConfigWire(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 7
	cfg.RetryDelay = Duration{time.Second}

	w1 := cfg.Wire(nil, nil)
	assertStrings(t, w1.BaseDirectory, cfg.BaseDirectory)
	assertStrings(t, w1.Prefix, "28")
	assertInts(t, w1.MaxAttempts, 7)
	if w1.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v; want 1s", w1.RetryDelay)
	}
}
