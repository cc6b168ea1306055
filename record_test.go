package w1log

import (
	"testing"
	"time"

	"github.com/hubertat/w1log/drivers"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		time time.Time
		want string
	}{
		{time.Unix(1373901234, 0), "1373901234.000000"},
		{time.Unix(1373901234, 560000000), "1373901234.560000"},
		{time.Unix(1373901234, 1000), "1373901234.000001"},
		{time.Unix(1373901234, 999999999), "1373901234.999999"},
		{time.Unix(0, 0), "0.000000"},
	}

	for _, c := range cases {
		assertStrings(t, FormatTimestamp(c.time), c.want)
	}
}

func TestLogRecordFormat(t *testing.T) {
	record := LogRecord{
		Time: time.Unix(1373901234, 250000000),
		Temperatures: []drivers.Temperature{
			drivers.NewTemperature(20125),
			drivers.InvalidTemperature(),
			drivers.NewTemperature(-5500),
		},
	}

	assertStrings(t, record.Format(3), "1373901234.250000\t20.125\t-273\t-5.5")
	assertStrings(t, record.Format(0), "1373901234.250000\t20.0\t-273\t-6.0")

	empty := LogRecord{Time: time.Unix(1, 0)}
	assertStrings(t, empty.Format(3), "1.000000")
}
