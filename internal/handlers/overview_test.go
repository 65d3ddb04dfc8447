package handlers_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carecircle-server/internal/cache"
	"carecircle-server/internal/handlers"
	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/triage"
)

func TestAdherence(t *testing.T) {
	assert.Equal(t, 100, handlers.Adherence(0, 0))
	assert.Equal(t, 50, handlers.Adherence(1, 2))
	assert.Equal(t, 67, handlers.Adherence(2, 3))
	assert.Equal(t, 100, handlers.Adherence(5, 2))
}

func TestDashboard_ComputesAndCaches(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)
	m := h.medicine(token, p.ID)
	h.medicine(token, p.ID)

	for _, status := range []string{"taken", "missed"} {
		res := h.do(http.MethodPost, "/api/v1/medicines/log", token, map[string]any{"medicineId": m.ID, "status": status})
		require.Equal(t, http.StatusCreated, res.Code)
	}
	res := h.do(http.MethodPost, "/api/v1/symptoms", token, map[string]any{"patientId": p.ID, "painLevel": 7})
	require.Equal(t, http.StatusCreated, res.Code)

	res = h.do(http.MethodGet, "/api/v1/dashboard/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var d handlers.Dashboard
	res.decode(t, &d)
	assert.Len(t, d.TodayMedicines, 2)
	assert.Equal(t, 1, d.TakenCount)
	assert.Equal(t, 1, d.MissedCount)
	assert.Equal(t, 50, d.Adherence)
	require.Len(t, d.RecentSymptoms, 1)
	require.NotNil(t, d.LatestTriage)
	assert.Equal(t, triage.Moderate, d.LatestTriage.Tier)
	assert.True(t, h.redis.Exists(cache.DashboardKey(p.ID)))

	// served from cache until the next write
	require.NoError(t, h.store.Symptoms.Create(t.Context(), &models.SymptomLog{PatientID: p.ID, PainLevel: 1, RecordedAt: clinicNow}))
	res = h.do(http.MethodGet, "/api/v1/dashboard/"+p.ID, token, nil)
	res.decode(t, &d)
	assert.Len(t, d.RecentSymptoms, 1)

	res = h.do(http.MethodPost, "/api/v1/medicines/log", token, map[string]any{"medicineId": m.ID, "status": "taken"})
	require.Equal(t, http.StatusCreated, res.Code)
	assert.False(t, h.redis.Exists(cache.DashboardKey(p.ID)))

	res = h.do(http.MethodGet, "/api/v1/dashboard/"+p.ID, token, nil)
	res.decode(t, &d)
	assert.Len(t, d.RecentSymptoms, 2)
	assert.Equal(t, 100, d.Adherence)
}

func TestDashboard_WithoutCache(t *testing.T) {
	h := newHarness(t, func(e *handlers.Env) { e.Dashboard = nil })
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)

	res := h.do(http.MethodGet, "/api/v1/dashboard/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var d handlers.Dashboard
	res.decode(t, &d)
	assert.Equal(t, 100, d.Adherence)
	assert.Nil(t, d.LatestTriage)
}

func TestReports(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)
	m := h.medicine(token, p.ID)
	h.do(http.MethodPost, "/api/v1/medicines/log", token, map[string]any{"medicineId": m.ID, "status": "taken"})
	h.do(http.MethodPost, "/api/v1/symptoms", token, map[string]any{"patientId": p.ID, "painLevel": 9, "temperature": 101.2})

	res := h.do(http.MethodGet, "/api/v1/reports/"+p.ID+"?format=txt", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "symptom-report-2026-03-14.txt")
	assert.Contains(t, string(res.Body), "Status: CONSULT")
	assert.Contains(t, string(res.Body), "Temperature: 101.2°F")

	res = h.do(http.MethodGet, "/api/v1/reports/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	f, err := excelize.OpenReader(bytes.NewReader(res.Body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Medicine Logs")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "taken", rows[1][2])

	res = h.do(http.MethodGet, "/api/v1/reports/"+p.ID+"?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSync_ReplaysOldestFirst(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)
	m := h.medicine(token, p.ID)

	at := func(hours int) time.Time { return clinicNow.Add(time.Duration(hours) * time.Hour) }
	res := h.do(http.MethodPost, "/api/v1/sync", token, map[string]any{
		"patientId": p.ID,
		"symptoms": []map[string]any{
			{"painLevel": 5, "recordedAt": at(-1)},
			{"painLevel": 3, "recordedAt": at(-3)},
			{"painLevel": 4, "recordedAt": at(-2)},
		},
		"medicineLogs": []map[string]any{
			{"medicineId": m.ID, "status": "missed", "date": at(-4)},
		},
	})
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var got handlers.SyncResponse
	res.decode(t, &got)
	assert.Equal(t, handlers.SyncResponse{Symptoms: 3, MedicineLogs: 1}, got)

	logs, err := h.store.Symptoms.ListByPatient(t.Context(), p.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, 5, logs[0].PainLevel)
	assert.Equal(t, "moderate", logs[0].Severity)
	assert.Contains(t, logs[0].Reasons, triage.ReasonRisingPain)

	assert.Equal(t, []notify.Kind{notify.KindMissedMedicine}, h.notifier.kinds())

	other := h.patient(token)
	res = h.do(http.MethodPost, "/api/v1/sync", token, map[string]any{
		"patientId":    other.ID,
		"medicineLogs": []map[string]any{{"medicineId": m.ID, "status": "taken"}},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSync_RejectedBatchStoresNothing(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)
	other := h.patient(token)
	foreign := h.medicine(token, other.ID)

	batch := map[string]any{
		"patientId": p.ID,
		"symptoms": []map[string]any{
			{"painLevel": 9},
			{"painLevel": 3},
		},
		"medicineLogs": []map[string]any{
			{"medicineId": foreign.ID, "status": "taken"},
		},
	}
	for attempt := 0; attempt < 2; attempt++ {
		res := h.do(http.MethodPost, "/api/v1/sync", token, batch)
		require.Equal(t, http.StatusBadRequest, res.Code, string(res.Body))
		assert.Contains(t, res.Env.Error, "medicineLogs[0]")
	}

	logs, err := h.store.Symptoms.ListByPatient(t.Context(), p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, h.notifier.kinds())

	batch["medicineLogs"] = []map[string]any{}
	res := h.do(http.MethodPost, "/api/v1/sync", token, batch)
	require.Equal(t, http.StatusOK, res.Code, string(res.Body))
	var got handlers.SyncResponse
	res.decode(t, &got)
	assert.Equal(t, handlers.SyncResponse{Symptoms: 2, Referrals: 1}, got)
	assert.Equal(t, []notify.Kind{notify.KindTriageReferral}, h.notifier.kinds())
}

func TestSync_BadSymptomStoresNothing(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("owner@example.com", models.RoleCaregiver)
	p := h.patient(token)
	m := h.medicine(token, p.ID)

	res := h.do(http.MethodPost, "/api/v1/sync", token, map[string]any{
		"patientId": p.ID,
		"symptoms": []map[string]any{
			{"painLevel": 4},
			{"painLevel": 5, "temperature": 101, "unit": "K"},
		},
		"medicineLogs": []map[string]any{{"medicineId": m.ID, "status": "missed"}},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)

	logs, err := h.store.Symptoms.ListByPatient(t.Context(), p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
	doses, err := h.store.Medicines.LogsBetween(t.Context(), p.ID, time.Unix(0, 0), clinicNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, doses)
	assert.Empty(t, h.notifier.kinds())
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	res := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), "UP")

	res = h.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
}
