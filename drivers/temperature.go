package drivers

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// InvalidReading is what an unreadable sensor is logged as.
const InvalidReading = "-273"

// Temperature is a single sensor result. The zero value is an invalid reading.
type Temperature struct {
	celsius float64
	value   physic.Temperature
	valid   bool
}

// NewTemperature takes the m°C figure the w1-therm driver reports.
func NewTemperature(milliCelsius float64) Temperature {
	return Temperature{
		celsius: milliCelsius / 1000.0,
		value:   physic.ZeroCelsius + physic.Temperature(math.Round(milliCelsius*float64(physic.MilliCelsius))),
		valid:   true,
	}
}

func InvalidTemperature() Temperature {
	return Temperature{}
}

func (t Temperature) Valid() bool {
	return t.valid
}

func (t Temperature) Physic() physic.Temperature {
	return t.value
}

// Celsius returns the reading rounded to decimals places. ok is false for an
// invalid reading.
func (t Temperature) Celsius(decimals int) (value float64, ok bool) {
	if !t.valid {
		return
	}
	return roundTo(t.celsius, decimals), true
}

// Format renders the rounded reading in its shortest form, always with a
// fractional part (20.0, 23.456), or InvalidReading.
func (t Temperature) Format(decimals int) string {
	value, ok := t.Celsius(decimals)
	if !ok {
		return InvalidReading
	}
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

func (t Temperature) String() string {
	if !t.valid {
		return "invalid"
	}
	return t.value.String()
}

// roundTo rounds the exact binary value of value to decimals places, halves
// away from zero, and returns the nearest float64 to the decimal result.
// Negative values that round to zero stay -0.
func roundTo(value float64, decimals int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Rat).SetFloat64(math.Abs(value))
	scaled.Mul(scaled, new(big.Rat).SetInt(pow))
	scaled.Add(scaled, big.NewRat(1, 2))

	units := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	rounded, _ := new(big.Rat).SetFrac(units, pow).Float64()
	return math.Copysign(rounded, value)
}
