package w1log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/w1log/drivers"
)

const (
	defaultInterval = 10 * time.Second
	defaultLogFile  = "~/temperature_log"
	defaultRounding = 3
	maxRounding     = 9
)

// Duration is a time.Duration read from JSON as "10s", "200ms" etc.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrapf(err, "duration must be a string like \"10s\", got %s", b)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "failed to parse duration %q", s)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Interval Duration
	LogFile  string
	Rounding int

	BaseDirectory string
	DeviceFile    string
	FamilyPrefix  string
	RetryDelay    Duration
	MaxAttempts   int

	LoadKernelModules bool
	KernelModules     []string

	LogLevel string
}

func DefaultConfig() Config {
	return Config{
		Interval:          Duration{defaultInterval},
		LogFile:           defaultLogFile,
		Rounding:          defaultRounding,
		BaseDirectory:     drivers.DefaultWireDirectory,
		DeviceFile:        drivers.DefaultWireDeviceFile,
		FamilyPrefix:      drivers.DefaultWirePrefix,
		RetryDelay:        Duration{drivers.DefaultWireRetryDelay},
		LoadKernelModules: true,
		KernelModules:     append([]string{}, drivers.DefaultKernelModules...),
		LogLevel:          "info",
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()
	if len(path) == 0 {
		return
	}

	cBuff, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed reading config file %s", path)
		return
	}
	err = json.Unmarshal(cBuff, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed unmarshalling json config %s", path)
		return
	}

	err = cfg.Validate()
	return
}

func (c Config) Validate() error {
	if c.Interval.Duration <= 0 {
		return errors.Errorf("Interval must be positive, got %v", c.Interval)
	}
	if len(c.LogFile) == 0 {
		return errors.New("LogFile not set")
	}
	if c.Rounding < 0 || c.Rounding > maxRounding {
		return errors.Errorf("Rounding must be between 0 and %d, got %d", maxRounding, c.Rounding)
	}
	if len(c.BaseDirectory) == 0 || len(c.DeviceFile) == 0 {
		return errors.New("BaseDirectory and DeviceFile must be set")
	}
	if len(c.FamilyPrefix) == 0 {
		return errors.New("FamilyPrefix not set")
	}
	if c.RetryDelay.Duration <= 0 {
		return errors.Errorf("RetryDelay must be positive, got %v", c.RetryDelay)
	}
	if c.MaxAttempts < 0 {
		return errors.Errorf("MaxAttempts cannot be negative, got %d", c.MaxAttempts)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid LogLevel %q", c.LogLevel)
	}
	return nil
}

// LogFilePath returns LogFile with a leading ~ expanded to the home dir.
func (c Config) LogFilePath() (string, error) {
	if c.LogFile != "~" && !strings.HasPrefix(c.LogFile, "~/") {
		return c.LogFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot expand ~ in LogFile")
	}
	return filepath.Join(home, strings.TrimPrefix(c.LogFile, "~")), nil
}

func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Wire builds the sysfs sensor driver described by the config.
func (c Config) Wire(fs drivers.FileSystem, logger *log.Logger) *drivers.Wire {
	return &drivers.Wire{
		BaseDirectory: c.BaseDirectory,
		DeviceFile:    c.DeviceFile,
		Prefix:        c.FamilyPrefix,
		RetryDelay:    c.RetryDelay.Duration,
		MaxAttempts:   c.MaxAttempts,
		Fs:            fs,
		Logger:        logger,
	}
}
