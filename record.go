package w1log

import (
	"strconv"
	"strings"
	"time"

	"github.com/hubertat/w1log/drivers"
)

// LogRecord is one polling cycle: capture time and one temperature per
// sensor, in sensor order.
type LogRecord struct {
	Time         time.Time
	Temperatures []drivers.Temperature
}

// Format renders the record as a tab separated log line without the
// trailing newline.
func (lr LogRecord) Format(rounding int) string {
	fields := make([]string, 0, len(lr.Temperatures)+1)
	fields = append(fields, FormatTimestamp(lr.Time))
	for _, temp := range lr.Temperatures {
		fields = append(fields, temp.Format(rounding))
	}
	return strings.Join(fields, "\t")
}

// FormatTimestamp renders t as unix seconds with microsecond fraction.
func FormatTimestamp(t time.Time) string {
	micro := t.UnixMicro()
	seconds, fraction := micro/1e6, micro%1e6
	if fraction < 0 {
		seconds, fraction = seconds-1, fraction+1e6
	}

	b := make([]byte, 0, 24)
	b = strconv.AppendInt(b, seconds, 10)
	b = append(b, '.')
	frac := strconv.FormatInt(fraction, 10)
	for i := len(frac); i < 6; i++ {
		b = append(b, '0')
	}
	b = append(b, frac...)
	return string(b)
}
