package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func fixture() Data {
	temp := func(f float64) *float64 { return &f }
	bp := func(v int) *int { return &v }

	med := models.Medicine{Name: "Paracetamol", Dosage: "500mg", Schedule: []string{"08:00", "20:00"},
		StartDate: now.AddDate(0, 0, -3), EndDate: now.AddDate(0, 0, 4)}
	med.ID = "med-1"

	latest := triage.NewClassifier(triage.DefaultThresholds()).
		WithClock(func() time.Time { return now }).
		Evaluate(triage.Vitals{PainLevel: 8, Temperature: triage.Fahrenheit(101.4)}, nil)

	return Data{
		Patient:   models.Patient{Name: "Asha", Age: 67, Gender: "female", Condition: "post-op"},
		Medicines: []models.Medicine{med},
		Logs: []models.MedicineLog{
			{MedicineID: "med-1", Status: models.MedicineTaken, Date: now.Add(-26 * time.Hour), Medicine: &med},
			{MedicineID: "med-1", Status: models.MedicineMissed, Date: now.Add(-2 * time.Hour)},
		},
		Symptoms: []models.SymptomLog{
			{PainLevel: 8, TemperatureF: temp(101.4), RecordedAt: now.Add(-time.Hour), Severity: "severe", ReferralRequired: true, Reasons: latest.Reasons},
			{PainLevel: 4, RecordedAt: now.Add(-24 * time.Hour), Systolic: bp(130), Diastolic: bp(85), Notes: "tired", Severity: "moderate"},
			{PainLevel: 2, TemperatureF: temp(98.6), RecordedAt: now.Add(-48 * time.Hour), Severity: "mild"},
			{PainLevel: 9, TemperatureF: temp(104), RecordedAt: now.AddDate(0, 0, -10), Severity: "severe"},
		},
		Latest:      &latest,
		GeneratedAt: now,
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tr := Summarize(recent(fixture().Symptoms, now))
	assert.Equal(t, 3, tr.Entries)
	assert.Equal(t, 2, tr.TempSamples)
	assert.InDelta(t, 14.0/3, tr.AvgPain, 0.0001)
	assert.InDelta(t, 100.0, tr.AvgTempF, 0.0001)

	assert.Equal(t, Trend{}, Summarize(nil))
}

func TestDoctorReport(t *testing.T) {
	t.Parallel()

	out := DoctorReport(fixture())

	assert.True(t, strings.HasPrefix(out, "PATIENT SYMPTOM REPORT\n"))
	assert.Contains(t, out, "Status: CONSULT")
	assert.Contains(t, out, "SYMPTOM HISTORY (Last 7 Days)")
	assert.Contains(t, out, "Entry 1: 2026-03-14 at 17:00")
	assert.Contains(t, out, "  Temperature: Not recorded")
	assert.Contains(t, out, "  Blood Pressure: 130/85")
	assert.Contains(t, out, "  Notes: tired")
	assert.NotContains(t, out, "Entry 4:")
	assert.Contains(t, out, "Average Pain Level: 4.7/10")
	assert.Contains(t, out, "Average Temperature: 100.0°F")
	assert.True(t, strings.HasSuffix(out, "End of Report\n"))
}

func TestDoctorReport_Empty(t *testing.T) {
	t.Parallel()

	out := DoctorReport(Data{GeneratedAt: now})
	assert.NotContains(t, out, "CURRENT TRIAGE STATUS")
	assert.Contains(t, out, "No entries recorded.")
	assert.NotContains(t, out, "Average Pain Level")
}

func TestWorkbook(t *testing.T) {
	t.Parallel()

	b, err := Workbook(fixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetMedicines, sheetLogs, sheetSymptoms}, f.GetSheetList())

	v, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", v)

	rows, err := f.GetRows(sheetMedicines)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, medicineHeader, rows[0])
	assert.Equal(t, "08:00, 20:00", rows[1][2])

	rows, err = f.GetRows(sheetLogs)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Paracetamol", rows[1][1])
	assert.Equal(t, "med-1", rows[2][1])
	assert.Equal(t, "missed", rows[2][2])

	rows, err = f.GetRows(sheetSymptoms)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "consult", rows[1][5])
	assert.Equal(t, "yes", rows[1][6])
	assert.Equal(t, "130/85", rows[2][3])
}
