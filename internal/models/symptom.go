package models

import (
	"time"

	"carecircle-server/internal/triage"
)

// SymptomLog is one vitals observation together with the triage outcome
// computed when it was stored. Temperatures are kept in Fahrenheit.
type SymptomLog struct {
	BaseModel
	PatientID    string    `gorm:"size:36;index:idx_symptom_patient_time;not null" json:"patientId"`
	PainLevel    int       `gorm:"not null" json:"painLevel"`
	TemperatureF *float64  `json:"temperatureF"`
	Systolic     *int      `json:"systolicBP,omitempty"`
	Diastolic    *int      `json:"diastolicBP,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	RecordedAt   time.Time `gorm:"index:idx_symptom_patient_time" json:"recordedAt"`

	Severity         string   `gorm:"size:16" json:"severity"`
	Advice           string   `gorm:"size:255" json:"advice"`
	ReferralRequired bool     `json:"referralRequired"`
	Reasons          []string `gorm:"serializer:json;type:text" json:"reasons"`
}

// NewSymptomLog copies the vitals into a storable row.
func NewSymptomLog(patientID string, v triage.Vitals) *SymptomLog {
	s := &SymptomLog{
		PatientID:  patientID,
		PainLevel:  v.PainLevel,
		Systolic:   v.Systolic,
		Diastolic:  v.Diastolic,
		Notes:      v.Notes,
		RecordedAt: v.RecordedAt,
	}
	if f, ok := v.Temperature.F(); ok {
		s.TemperatureF = &f
	}
	return s
}

// Vitals rebuilds the classifier input from the stored row.
func (s *SymptomLog) Vitals() triage.Vitals {
	temp := triage.NotRecorded
	if s.TemperatureF != nil {
		temp = triage.Fahrenheit(*s.TemperatureF)
	}
	return triage.Vitals{
		PainLevel:   s.PainLevel,
		Temperature: temp,
		Systolic:    s.Systolic,
		Diastolic:   s.Diastolic,
		Notes:       s.Notes,
		RecordedAt:  s.RecordedAt,
	}
}

// ApplyTriage stores the classifier outcome on the row.
func (s *SymptomLog) ApplyTriage(r triage.Result) {
	s.Severity = r.Tier.String()
	s.Advice = r.Advice
	s.ReferralRequired = r.ReferralRequired
	s.Reasons = append([]string(nil), r.Reasons...)
}

// Tier parses the stored severity. Rows written before classification
// report Mild.
func (s *SymptomLog) Tier() triage.Tier {
	t, err := triage.ParseTier(s.Severity)
	if err != nil {
		return triage.Mild
	}
	return t
}

// HistoryVitals converts newest-first rows into classifier history.
func HistoryVitals(logs []SymptomLog) []triage.Vitals {
	out := make([]triage.Vitals, 0, len(logs))
	for i := range logs {
		out = append(out, logs[i].Vitals())
	}
	return out
}
