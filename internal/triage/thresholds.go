package triage

import (
	"errors"
	"fmt"
)

// Thresholds is the rule table. Temperatures are Fahrenheit, pressures mmHg.
type Thresholds struct {
	HighFeverF       float64 // severe at or above
	PersistentFeverF float64 // each of the two prior readings must reach this
	ElevatedTempF    float64 // moderate at or above, below HighFeverF
	FeverWithPainF   float64 // combined rule temperature

	SeverePain       int // severe at or above
	ModeratePain     int // moderate at or above, below SeverePain
	PainWithFeverMin int // combined rule pain

	HighSystolic      int
	HighDiastolic     int
	ElevatedSystolic  int
	ElevatedDiastolic int
}

// DefaultThresholds returns the clinical defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighFeverF:       101,
		PersistentFeverF: 100,
		ElevatedTempF:    99,
		FeverWithPainF:   100,

		SeverePain:       8,
		ModeratePain:     6,
		PainWithFeverMin: 7,

		HighSystolic:      140,
		HighDiastolic:     90,
		ElevatedSystolic:  130,
		ElevatedDiastolic: 85,
	}
}

// Validate checks that every moderate band sits below its severe threshold.
func (t Thresholds) Validate() error {
	var errs []error
	if t.ElevatedTempF >= t.HighFeverF {
		errs = append(errs, fmt.Errorf("elevated temperature %.1f must be below high fever %.1f", t.ElevatedTempF, t.HighFeverF))
	}
	if t.ElevatedTempF < MinPlausibleF {
		errs = append(errs, fmt.Errorf("elevated temperature %.1f below plausible minimum %.1f", t.ElevatedTempF, MinPlausibleF))
	}
	if t.ModeratePain >= t.SeverePain {
		errs = append(errs, fmt.Errorf("moderate pain %d must be below severe pain %d", t.ModeratePain, t.SeverePain))
	}
	if t.ModeratePain < 1 || t.SeverePain > 10 {
		errs = append(errs, errors.New("pain thresholds must lie within 1..10"))
	}
	if t.ElevatedSystolic >= t.HighSystolic {
		errs = append(errs, fmt.Errorf("elevated systolic %d must be below high systolic %d", t.ElevatedSystolic, t.HighSystolic))
	}
	if t.ElevatedDiastolic >= t.HighDiastolic {
		errs = append(errs, fmt.Errorf("elevated diastolic %d must be below high diastolic %d", t.ElevatedDiastolic, t.HighDiastolic))
	}
	return errors.Join(errs...)
}
