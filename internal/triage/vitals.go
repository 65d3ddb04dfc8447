package triage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Vitals is one recorded observation for a patient.
type Vitals struct {
	PainLevel   int         `json:"painLevel"`
	Temperature Temperature `json:"temperatureF"`
	Systolic    *int        `json:"systolicBP,omitempty"`
	Diastolic   *int        `json:"diastolicBP,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	RecordedAt  time.Time   `json:"recordedAt"`
}

// BloodPressure formats the reading as "120/80", or "" when absent.
func (v Vitals) BloodPressure() string {
	switch {
	case v.Systolic != nil && v.Diastolic != nil:
		return fmt.Sprintf("%d/%d", *v.Systolic, *v.Diastolic)
	case v.Systolic != nil:
		return fmt.Sprintf("%d/-", *v.Systolic)
	case v.Diastolic != nil:
		return fmt.Sprintf("-/%d", *v.Diastolic)
	}
	return ""
}

// ParseBloodPressure reads "systolic/diastolic". An empty string yields two
// nil values.
func ParseBloodPressure(s string) (systolic, diastolic *int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("blood pressure %q: want systolic/diastolic", s)
	}
	sys, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("blood pressure %q: systolic: %w", s, err)
	}
	dia, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("blood pressure %q: diastolic: %w", s, err)
	}
	if sys <= 0 || dia <= 0 || sys > 300 || dia > 200 {
		return nil, nil, fmt.Errorf("blood pressure %q out of range", s)
	}
	return &sys, &dia, nil
}
