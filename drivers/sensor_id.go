package drivers

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/onewire"
)

// SensorId is the sysfs directory name of a one-wire device, e.g.
// 28-0000075c4a1b: family code, dash, 48 bit serial in hex.
type SensorId string

type Family byte

const (
	DS18S20  Family = 0x10
	DS1822   Family = 0x22
	DS18B20  Family = 0x28
	MAX31850 Family = 0x3b
)

func (f Family) String() string {
	switch f {
	case DS18S20:
		return "DS18S20"
	case DS1822:
		return "DS1822"
	case DS18B20:
		return "DS18B20"
	case MAX31850:
		return "MAX31850"
	default:
		return "unknown"
	}
}

func (id SensorId) String() string {
	return string(id)
}

func (id SensorId) split() (family, serial string, err error) {
	family, serial, found := strings.Cut(string(id), "-")
	if !found || len(family) != 2 || len(serial) == 0 || len(serial) > 12 {
		err = errors.Errorf("sensor id %s is not in <family>-<serial> form", id)
	}
	return
}

func (id SensorId) Family() (Family, error) {
	family, _, err := id.split()
	if err != nil {
		return 0, err
	}
	code, err := strconv.ParseUint(family, 16, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse family code of %s", id)
	}
	return Family(code), nil
}

// Address returns the bus address without the CRC byte: family code in the
// low byte, serial above it.
func (id SensorId) Address() (onewire.Address, error) {
	family, err := id.Family()
	if err != nil {
		return 0, err
	}
	_, serial, _ := id.split()
	number, err := strconv.ParseUint(serial, 16, 48)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse serial of %s", id)
	}
	return onewire.Address(number<<8 | uint64(family)), nil
}
