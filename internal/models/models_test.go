package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecircle-server/internal/triage"
)

func TestUser_Password(t *testing.T) {
	u := &User{Email: "a@b.c"}
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestSymptomLog_RoundTrip(t *testing.T) {
	sys, dia := 150, 95
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	v := triage.Vitals{
		PainLevel:   6,
		Temperature: triage.Celsius(38),
		Systolic:    &sys,
		Diastolic:   &dia,
		Notes:       "headache",
		RecordedAt:  at,
	}

	row := NewSymptomLog("p1", v)
	require.NotNil(t, row.TemperatureF)
	assert.InDelta(t, 100.4, *row.TemperatureF, 0.001)

	back := row.Vitals()
	assert.Equal(t, 6, back.PainLevel)
	assert.Equal(t, "150/95", back.BloodPressure())
	assert.True(t, back.Temperature.AtLeast(100.3))
	assert.Equal(t, at, back.RecordedAt)

	row.ApplyTriage(triage.NewClassifier(triage.DefaultThresholds()).Evaluate(back, nil))
	assert.Equal(t, "severe", row.Severity)
	assert.Equal(t, triage.Severe, row.Tier())
	assert.True(t, row.ReferralRequired)
	assert.Contains(t, row.Reasons, triage.ReasonHighBP)
}

func TestSymptomLog_UnrecordedTemperature(t *testing.T) {
	row := NewSymptomLog("p1", triage.Vitals{PainLevel: 2})
	assert.Nil(t, row.TemperatureF)
	assert.False(t, row.Vitals().Temperature.Recorded())
	assert.Equal(t, triage.Mild, row.Tier())
}

func TestHistoryVitals_KeepsOrder(t *testing.T) {
	logs := []SymptomLog{{PainLevel: 5}, {PainLevel: 3}}
	h := HistoryVitals(logs)
	require.Len(t, h, 2)
	assert.Equal(t, 5, h[0].PainLevel)
	assert.Equal(t, 3, h[1].PainLevel)
}

func TestMedicine_ActiveOn(t *testing.T) {
	m := &Medicine{
		StartDate: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC),
	}
	assert.True(t, m.ActiveOn(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, m.ActiveOn(time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)))
	assert.False(t, m.ActiveOn(time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)))
	assert.False(t, m.ActiveOn(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)))
}

func TestCareTask_Status(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &CareTask{DueAt: due, Repeat: RepeatDaily}

	assert.Equal(t, TaskPending, task.StatusAt(due.Add(-time.Hour)))
	assert.Equal(t, TaskOverdue, task.StatusAt(due.Add(time.Minute)))

	done := due
	task.CompletedAt = &done
	assert.Equal(t, TaskDone, task.StatusAt(due.Add(time.Hour)))

	next := task.Next()
	require.NotNil(t, next)
	assert.Equal(t, due.AddDate(0, 0, 1), next.DueAt)
	assert.Nil(t, next.CompletedAt)

	assert.Nil(t, (&CareTask{Repeat: RepeatNone}).Next())
}

func TestPatient_HasCaregiver(t *testing.T) {
	p := &Patient{CreatedByID: "u1", Caregivers: []User{{BaseModel: BaseModel{ID: "u2"}}}}
	assert.True(t, p.HasCaregiver("u1"))
	assert.True(t, p.HasCaregiver("u2"))
	assert.False(t, p.HasCaregiver("u3"))
}
