package triage

import (
	"strings"
	"time"
)

// Reason texts, in the order the rules are evaluated.
const (
	ReasonPersistentFever = "persistent high fever across multiple days"
	ReasonHighFever       = "high fever detected"
	ReasonSeverePain      = "severe pain reported"
	ReasonHighBP          = "high blood pressure detected"
	ReasonFeverWithPain   = "fever plus high pain requires attention"
	ReasonElevatedTemp    = "elevated temperature"
	ReasonModeratePain    = "moderate-to-high pain"
	ReasonElevatedBP      = "elevated blood pressure"
	ReasonRisingPain      = "rising pain trend"
	ReasonAllNormal       = "all readings within normal range"
)

var advice = map[Tier]string{
	Mild:     "Home care is sufficient. Continue monitoring.",
	Moderate: "Monitor symptoms closely and consult a doctor if they persist.",
	Severe:   "Seek medical attention promptly.",
}

// Advice returns the canonical advice text for a tier.
func Advice(t Tier) string { return advice[t] }

// Result is the outcome of one evaluation. It is never mutated after
// Evaluate returns.
type Result struct {
	Tier             Tier      `json:"tier"`
	Advice           string    `json:"advice"`
	ReferralRequired bool      `json:"referralRequired"`
	Reasons          []string  `json:"reasons"`
	EvaluatedAt      time.Time `json:"evaluatedAt"`
}

// Status is the display-vocabulary tier.
func (r Result) Status() string { return r.Tier.Status() }

// Summary joins the reasons for single-line display.
func (r Result) Summary() string { return strings.Join(r.Reasons, ". ") }

// Classifier evaluates vitals against a fixed threshold table.
type Classifier struct {
	th  Thresholds
	now func() time.Time
}

// NewClassifier binds a threshold table. Use DefaultThresholds for the
// clinical defaults.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th, now: time.Now}
}

// WithClock returns a copy of c that stamps results using now.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	cp := *c
	cp.now = now
	return &cp
}

// Thresholds returns the bound rule table.
func (c *Classifier) Thresholds() Thresholds { return c.th }

// Evaluate classifies current, using history (newest first) for the
// persistence and trend rules. Only history[0] and history[1] are read.
func (c *Classifier) Evaluate(current Vitals, history []Vitals) Result {
	th := c.th
	tier := Mild
	var reasons []string

	escalate := func(to Tier, reason string) {
		if to > tier {
			tier = to
		}
		reasons = append(reasons, reason)
	}

	if current.Temperature.AtLeast(th.HighFeverF) {
		if len(history) >= 2 &&
			history[0].Temperature.AtLeast(th.PersistentFeverF) &&
			history[1].Temperature.AtLeast(th.PersistentFeverF) {
			escalate(Severe, ReasonPersistentFever)
		} else {
			escalate(Severe, ReasonHighFever)
		}
	}
	if current.PainLevel >= th.SeverePain {
		escalate(Severe, ReasonSeverePain)
	}
	if atLeast(current.Systolic, th.HighSystolic) || atLeast(current.Diastolic, th.HighDiastolic) {
		escalate(Severe, ReasonHighBP)
	}
	if current.Temperature.AtLeast(th.FeverWithPainF) && current.PainLevel >= th.PainWithFeverMin {
		escalate(Severe, ReasonFeverWithPain)
	}

	if !tier.Top() {
		if current.Temperature.Between(th.ElevatedTempF, th.HighFeverF) {
			escalate(Moderate, ReasonElevatedTemp)
		}
		if current.PainLevel >= th.ModeratePain && current.PainLevel < th.SeverePain {
			escalate(Moderate, ReasonModeratePain)
		}
		if between(current.Systolic, th.ElevatedSystolic, th.HighSystolic) ||
			between(current.Diastolic, th.ElevatedDiastolic, th.HighDiastolic) {
			escalate(Moderate, ReasonElevatedBP)
		}
		if len(history) >= 2 &&
			current.PainLevel > history[0].PainLevel &&
			history[0].PainLevel > history[1].PainLevel {
			escalate(Moderate, ReasonRisingPain)
		}
	}

	if len(reasons) == 0 {
		reasons = []string{ReasonAllNormal}
	}

	return Result{
		Tier:             tier,
		Advice:           Advice(tier),
		ReferralRequired: tier.Top(),
		Reasons:          reasons,
		EvaluatedAt:      c.now(),
	}
}

func atLeast(v *int, limit int) bool {
	return v != nil && *v >= limit
}

func between(v *int, lo, hi int) bool {
	return v != nil && *v >= lo && *v < hi
}
