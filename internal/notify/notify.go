// Package notify delivers caregiver alerts raised by triage and medicine
// adherence.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

// Kind identifies what raised an alert.
type Kind string

const (
	KindTriageReferral Kind = "triage_referral"
	KindMissedMedicine Kind = "missed_medicine"
)

// Alert is the payload sent to a patient's caregivers.
type Alert struct {
	Kind           Kind      `json:"kind"`
	PatientID      string    `json:"patientId"`
	PatientName    string    `json:"patientName"`
	CaregiverPhone string    `json:"caregiverPhone,omitempty"`
	CaregiverIDs   []string  `json:"caregiverIds,omitempty"`
	Severity       string    `json:"severity,omitempty"`
	Status         string    `json:"status,omitempty"`
	Reasons        []string  `json:"reasons,omitempty"`
	Message        string    `json:"message"`
	At             time.Time `json:"at"`
}

// Notifier sends alerts to whoever looks after the patient.
type Notifier interface {
	NotifyCaregivers(ctx context.Context, a Alert) error
}

// Nop drops every alert.
type Nop struct{}

func (Nop) NotifyCaregivers(context.Context, Alert) error { return nil }

const missedDoseText = "Reminder: You missed your scheduled medicine. Please take it as advised."

// TriageAlert builds the alert for an evaluation that requires referral.
func TriageAlert(p *models.Patient, r triage.Result) Alert {
	a := base(p, KindTriageReferral, r.EvaluatedAt)
	a.Severity = r.Tier.String()
	a.Status = r.Status()
	a.Reasons = append([]string(nil), r.Reasons...)
	a.Message = fmt.Sprintf("%s needs attention: %s. %s", p.Name, r.Summary(), r.Advice)
	return a
}

// MissedDoseAlert builds the alert for a dose logged as missed.
func MissedDoseAlert(p *models.Patient, m *models.Medicine, at time.Time) Alert {
	a := base(p, KindMissedMedicine, at)
	a.Message = fmt.Sprintf("%s (%s %s)", missedDoseText, m.Name, m.Dosage)
	return a
}

func base(p *models.Patient, kind Kind, at time.Time) Alert {
	ids := make([]string, 0, len(p.Caregivers)+1)
	seen := map[string]bool{}
	for _, id := range append([]string{p.CreatedByID}, caregiverIDs(p)...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return Alert{
		Kind:           kind,
		PatientID:      p.ID,
		PatientName:    strings.TrimSpace(p.Name),
		CaregiverPhone: p.CaregiverPhone,
		CaregiverIDs:   ids,
		At:             at,
	}
}

func caregiverIDs(p *models.Patient) []string {
	out := make([]string, 0, len(p.Caregivers))
	for _, c := range p.Caregivers {
		out = append(out, c.ID)
	}
	return out
}
