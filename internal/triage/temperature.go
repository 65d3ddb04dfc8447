package triage

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MinPlausibleF is the lowest reading accepted as a real body temperature.
// Anything below it is treated as "not recorded".
const MinPlausibleF = 90.0

// Unit names a temperature scale.
type Unit string

const (
	UnitFahrenheit Unit = "F"
	UnitCelsius    Unit = "C"
)

// ParseUnit accepts "F", "C", "fahrenheit", "celsius" (any case).
// An empty string means Fahrenheit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "f", "fahrenheit", "°f":
		return UnitFahrenheit, nil
	case "c", "celsius", "°c":
		return UnitCelsius, nil
	}
	return "", fmt.Errorf("unknown temperature unit %q", s)
}

// Temperature is a body temperature reading held in Fahrenheit.
// The zero value means the temperature was not recorded.
type Temperature struct {
	f  float64
	ok bool
}

// Fahrenheit returns a reading in degrees Fahrenheit.
func Fahrenheit(v float64) Temperature {
	return Temperature{f: v, ok: true}
}

// Celsius returns a reading in degrees Celsius, converted to Fahrenheit.
func Celsius(v float64) Temperature {
	return Temperature{f: v*9/5 + 32, ok: true}
}

// NotRecorded is the unknown temperature.
var NotRecorded = Temperature{}

// In builds a Temperature from a raw value in the given unit.
func In(v float64, u Unit) Temperature {
	if u == UnitCelsius {
		return Celsius(v)
	}
	return Fahrenheit(v)
}

// Recorded reports whether the reading is known.
func (t Temperature) Recorded() bool { return t.ok }

// F returns the reading in Fahrenheit and whether it is known.
func (t Temperature) F() (float64, bool) { return t.f, t.ok }

// C returns the reading in Celsius and whether it is known.
func (t Temperature) C() (float64, bool) {
	if !t.ok {
		return 0, false
	}
	return (t.f - 32) * 5 / 9, true
}

// AtLeast reports whether the reading is known and >= limit (Fahrenheit).
func (t Temperature) AtLeast(limitF float64) bool {
	return t.ok && t.f >= limitF
}

// Between reports whether the reading is known and lo <= t < hi (Fahrenheit).
func (t Temperature) Between(loF, hiF float64) bool {
	return t.ok && t.f >= loF && t.f < hiF
}

func (t Temperature) String() string {
	if !t.ok {
		return "Not recorded"
	}
	return fmt.Sprintf("%.1f°F", t.f)
}

// MarshalJSON encodes the reading as Fahrenheit, or null when unknown.
func (t Temperature) MarshalJSON() ([]byte, error) {
	if !t.ok {
		return []byte("null"), nil
	}
	return json.Marshal(math.Round(t.f*10) / 10)
}

// UnmarshalJSON decodes a Fahrenheit number or null.
func (t *Temperature) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = NotRecorded
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("temperature: %w", err)
	}
	*t = Fahrenheit(v)
	return nil
}

// NormalizeTemperature is the ingestion-boundary conversion: it applies the
// unit, and maps missing or implausible (< MinPlausibleF) readings to
// NotRecorded. A nil value means the field was left empty.
func NormalizeTemperature(v *float64, u Unit) Temperature {
	if v == nil {
		return NotRecorded
	}
	t := In(*v, u)
	if !t.AtLeast(MinPlausibleF) {
		return NotRecorded
	}
	return t
}
