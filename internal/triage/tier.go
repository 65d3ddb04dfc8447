package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is the ordinal severity scale. Higher is more urgent.
type Tier int

const (
	Mild Tier = iota
	Moderate
	Severe
)

// String returns the backend vocabulary: mild, moderate, severe.
func (t Tier) String() string {
	switch t {
	case Mild:
		return "mild"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Status returns the display vocabulary used by the UI: normal, monitor, consult.
func (t Tier) Status() string {
	switch t {
	case Mild:
		return "normal"
	case Moderate:
		return "monitor"
	case Severe:
		return "consult"
	}
	return t.String()
}

// Top reports whether t is the highest tier.
func (t Tier) Top() bool { return t == Severe }

// ParseTier accepts either vocabulary, case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mild", "normal", "low":
		return Mild, nil
	case "moderate", "monitor", "medium":
		return Moderate, nil
	case "severe", "consult", "high":
		return Severe, nil
	}
	return Mild, fmt.Errorf("unknown severity %q", s)
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("tier: %w", err)
	}
	v, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
