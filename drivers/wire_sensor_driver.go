package drivers

import (
	"context"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const (
	DefaultWireDirectory  = "/sys/bus/w1/devices"
	DefaultWireDeviceFile = "w1_slave"
	DefaultWirePrefix     = "28"
	DefaultWireRetryDelay = 200 * time.Millisecond

	wireReadyMarker       = "YES"
	wireTemperatureMarker = "t="
	wireSensorDriverName  = "wire"
)

var (
	ErrNoSensorsFound = errors.New("no sensors found")

	errNotReady        = errors.New("conversion not finished")
	errNoMarker        = errors.Errorf("no %s marker in data line", wireTemperatureMarker)
	errMissingDataLine = errors.New("device file has no data line")
)

var _ SensorDriver = (*Wire)(nil)

// Wire reads temperature sensors exposed by the w1-therm kernel driver.
type Wire struct {
	BaseDirectory string
	DeviceFile    string
	Prefix        string
	RetryDelay    time.Duration
	// MaxAttempts bounds the reads spent waiting for a finished conversion.
	// Zero waits forever.
	MaxAttempts int

	Fs     FileSystem
	Logger *log.Logger
	// Sleep defaults to a context aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	sensors []SensorId
	ready   bool
}

// Discover lists baseDir and returns the entries starting with prefix, in
// listing order. Entries are not validated any further.
func Discover(fs FileSystem, baseDir, prefix string) ([]SensorId, error) {
	names, err := fs.ReadDirNames(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan sensor directory %s", baseDir)
	}

	sensors := []SensorId{}
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			sensors = append(sensors, SensorId(name))
		}
	}
	if len(sensors) == 0 {
		return nil, errors.Wrapf(ErrNoSensorsFound, "nothing matching %s* in %s", prefix, baseDir)
	}

	return sensors, nil
}

// settings returns w1 with empty fields filled in. The receiver is left
// untouched.
func (w1 *Wire) settings() Wire {
	resolved := *w1
	if len(resolved.BaseDirectory) == 0 {
		resolved.BaseDirectory = DefaultWireDirectory
	}
	if len(resolved.DeviceFile) == 0 {
		resolved.DeviceFile = DefaultWireDeviceFile
	}
	if len(resolved.Prefix) == 0 {
		resolved.Prefix = DefaultWirePrefix
	}
	if resolved.RetryDelay <= 0 {
		resolved.RetryDelay = DefaultWireRetryDelay
	}
	if resolved.Fs == nil {
		resolved.Fs = OsFS{}
	}
	if resolved.Logger == nil {
		resolved.Logger = log.Default()
	}
	if resolved.Sleep == nil {
		resolved.Sleep = SleepContext
	}
	return resolved
}

// Setup discovers the attached sensors. It runs once; sensors plugged in
// later are not picked up.
func (w1 *Wire) Setup() (err error) {
	cfg := w1.settings()

	w1.sensors, err = Discover(cfg.Fs, cfg.BaseDirectory, cfg.Prefix)
	if err != nil {
		err = errors.Wrap(err, "failed to init wire sensor driver")
		return
	}

	w1.ready = true
	return
}

func (w1 *Wire) Close() error {
	return nil
}

func (w1 *Wire) IsReady() bool {
	return w1.ready
}

func (w1 *Wire) Name() string {
	return wireSensorDriverName
}

func (w1 *Wire) Sensors() []SensorId {
	return append([]SensorId{}, w1.sensors...)
}

func (w1 *Wire) devicePath(id SensorId) string {
	return filepath.Join(w1.BaseDirectory, string(id), w1.DeviceFile)
}

// ReadTemperature blocks until the sensor reports a finished conversion and
// returns the parsed reading. Every failure to get a value ends up as an
// invalid Temperature; the error is only set when ctx is done.
func (w1 *Wire) ReadTemperature(ctx context.Context, id SensorId) (Temperature, error) {
	cfg := w1.settings()
	path := cfg.devicePath(id)

	for attempt := 1; ; attempt++ {
		lines, err := cfg.Fs.ReadLines(path)
		if err != nil {
			cfg.Logger.Debug("sensor read failed", "sensor", id, "error", err)
			return InvalidTemperature(), nil
		}

		temperature, err := parseWireReading(lines)
		if err == nil {
			return temperature, nil
		}
		if !errors.Is(err, errNotReady) {
			cfg.Logger.Debug("invalid sensor reading", "sensor", id, "error", err)
			return temperature, nil
		}

		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			cfg.Logger.Warn("sensor never finished conversion", "sensor", id, "attempts", attempt)
			return InvalidTemperature(), nil
		}
		if err = cfg.Sleep(ctx, cfg.RetryDelay); err != nil {
			return InvalidTemperature(), errors.Wrapf(err, "stopped waiting for sensor %s", id)
		}
	}
}

// parseWireReading interprets w1_slave content:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func parseWireReading(lines []string) (Temperature, error) {
	if len(lines) == 0 || !strings.HasSuffix(strings.TrimSpace(lines[0]), wireReadyMarker) {
		return InvalidTemperature(), errNotReady
	}
	if len(lines) < 2 {
		return InvalidTemperature(), errMissingDataLine
	}

	position := strings.Index(lines[1], wireTemperatureMarker)
	if position < 0 {
		return InvalidTemperature(), errNoMarker
	}

	raw := strings.TrimSpace(lines[1][position+len(wireTemperatureMarker):])
	milliCelsius, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return InvalidTemperature(), errors.Wrapf(err, "failed converting temperature string %q to m°C", raw)
	}
	if math.IsNaN(milliCelsius) || math.IsInf(milliCelsius, 0) {
		return InvalidTemperature(), errors.Errorf("temperature string %q is not a finite number", raw)
	}

	return NewTemperature(milliCelsius), nil
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
