package drivers

import "context"

type SensorDriver interface {
	Setup() error
	Close() error
	IsReady() bool
	Name() string
	Sensors() []SensorId
	ReadTemperature(ctx context.Context, id SensorId) (Temperature, error)
}
