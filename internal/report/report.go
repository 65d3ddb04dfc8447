// Package report renders a patient's recovery history for download.
package report

import (
	"time"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

// HistoryDays is the window covered by the doctor report.
const HistoryDays = 7

// Data is everything a report needs. Symptoms are newest first.
type Data struct {
	Patient     models.Patient
	Medicines   []models.Medicine
	Logs        []models.MedicineLog
	Symptoms    []models.SymptomLog
	Latest      *triage.Result
	GeneratedAt time.Time
}

// Trend summarizes recent symptom entries.
type Trend struct {
	Entries     int
	AvgPain     float64
	AvgTempF    float64
	TempSamples int
}

// Summarize averages pain over all entries and temperature over entries
// where it was recorded.
func Summarize(logs []models.SymptomLog) Trend {
	var tr Trend
	var pain, temp float64
	for _, l := range logs {
		tr.Entries++
		pain += float64(l.PainLevel)
		if l.TemperatureF != nil {
			temp += *l.TemperatureF
			tr.TempSamples++
		}
	}
	if tr.Entries > 0 {
		tr.AvgPain = pain / float64(tr.Entries)
	}
	if tr.TempSamples > 0 {
		tr.AvgTempF = temp / float64(tr.TempSamples)
	}
	return tr
}

// recent returns the newest-first entries within HistoryDays of now.
func recent(logs []models.SymptomLog, now time.Time) []models.SymptomLog {
	cutoff := now.AddDate(0, 0, -HistoryDays)
	var out []models.SymptomLog
	for _, l := range logs {
		if l.RecordedAt.Before(cutoff) {
			continue
		}
		out = append(out, l)
	}
	return out
}
