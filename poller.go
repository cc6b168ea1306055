package w1log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/w1log/drivers"
)

// Poller reads every sensor of a driver once per cycle and appends the
// results to the log file.
type Poller struct {
	driver  drivers.SensorDriver
	fs      drivers.FileSystem
	console io.Writer
	logger  *log.Logger

	interval time.Duration
	rounding int
	logPath  string
	sensors  []drivers.SensorId

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller takes the sensor list from a driver that is already set up. The
// list is fixed for the lifetime of the poller.
func NewPoller(cfg Config, driver drivers.SensorDriver, fs drivers.FileSystem, console io.Writer, logger *log.Logger) (*Poller, error) {
	if driver == nil || !driver.IsReady() {
		return nil, errors.New("sensor driver not set up")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	logPath, err := cfg.LogFilePath()
	if err != nil {
		return nil, err
	}

	sensors := driver.Sensors()
	if len(sensors) == 0 {
		return nil, drivers.ErrNoSensorsFound
	}

	if fs == nil {
		fs = drivers.OsFS{}
	}
	if console == nil {
		console = os.Stdout
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Poller{
		driver:   driver,
		fs:       fs,
		console:  console,
		logger:   logger,
		interval: cfg.Interval.Duration,
		rounding: cfg.Rounding,
		logPath:  logPath,
		sensors:  sensors,
		now:      time.Now,
		sleep:    drivers.SleepContext,
	}, nil
}

func (p *Poller) Sensors() []drivers.SensorId {
	return append([]drivers.SensorId{}, p.sensors...)
}

func (p *Poller) LogPath() string {
	return p.logPath
}

// Cycle reads all sensors in order, appends the line to the log file and
// echoes it to the console. The line is stamped once every sensor has been
// read. It only fails when ctx is done.
func (p *Poller) Cycle(ctx context.Context) (record LogRecord, err error) {
	record.Temperatures = make([]drivers.Temperature, 0, len(p.sensors))

	for _, sensor := range p.sensors {
		var temp drivers.Temperature
		temp, err = p.driver.ReadTemperature(ctx, sensor)
		if err != nil {
			err = errors.Wrapf(err, "cycle interrupted at sensor %s", sensor)
			return
		}
		record.Temperatures = append(record.Temperatures, temp)
	}
	record.Time = p.now()

	line := record.Format(p.rounding)
	appendErr := p.fs.AppendLine(p.logPath, line)
	if appendErr != nil {
		p.logger.Error("failed to append to log file", "path", p.logPath, "error", appendErr)
	}
	fmt.Fprintln(p.console, line)

	return
}

// Run polls until ctx is done and returns its error.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("polling started", "sensors", len(p.sensors), "interval", p.interval, "log", p.logPath)

	for {
		_, err := p.Cycle(ctx)
		if err != nil {
			return err
		}

		err = p.sleep(ctx, p.interval)
		if err != nil {
			return err
		}
	}
}
