package handlers

import (
	"math"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

const recentSymptomCount = 5

// Dashboard is the caregiver's daily overview of one patient.
type Dashboard struct {
	PatientID      string              `json:"patientId"`
	TodayMedicines []models.Medicine   `json:"todayMedicines"`
	Adherence      int                 `json:"adherence"`
	TakenCount     int                 `json:"takenCount"`
	MissedCount    int                 `json:"missedCount"`
	RecentSymptoms []models.SymptomLog `json:"recentSymptoms"`
	LatestTriage   *triage.Result      `json:"latestTriage"`
}

// Adherence is the share of today's active medicines logged as taken, as a
// rounded percentage capped at 100. No active medicines counts as 100.
func Adherence(taken, active int) int {
	if active == 0 {
		return 100
	}
	pct := int(math.Round(float64(taken) / float64(active) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// DashboardHandler serves the overview, cached per patient.
type DashboardHandler struct{ *Env }

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(env *Env) *DashboardHandler {
	return &DashboardHandler{Env: env}
}

// GetDashboard returns today's overview for a patient.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var cached Dashboard
	hit, err := h.Dashboard.Get(ctx, p.ID, &cached)
	if err != nil {
		h.Logger.Warn("dashboard cache read failed", zap.String("patient_id", p.ID), zap.Error(err))
	}
	if hit {
		utils.Success(c, "Dashboard fetched successfully", cached)
		return
	}

	now := h.Now()
	meds, err := h.Store.Medicines.ActiveOn(ctx, p.ID, now)
	if err != nil {
		h.storeError(c, err, "Medicines")
		return
	}
	from, to := models.DayBounds(now)
	logs, err := h.Store.Medicines.LogsBetween(ctx, p.ID, from, to)
	if err != nil {
		h.storeError(c, err, "Medicine logs")
		return
	}
	symptoms, err := h.Store.Symptoms.ListByPatient(ctx, p.ID, recentSymptomCount)
	if err != nil {
		h.storeError(c, err, "Symptom logs")
		return
	}

	d := Dashboard{
		PatientID:      p.ID,
		TodayMedicines: meds,
		RecentSymptoms: symptoms,
		LatestTriage:   latestResult(symptoms),
	}
	for _, l := range logs {
		switch l.Status {
		case models.MedicineTaken:
			d.TakenCount++
		case models.MedicineMissed:
			d.MissedCount++
		}
	}
	d.Adherence = Adherence(d.TakenCount, len(meds))

	if err := h.Dashboard.Put(ctx, p.ID, d); err != nil {
		h.Logger.Warn("dashboard cache write failed", zap.String("patient_id", p.ID), zap.Error(err))
	}
	utils.Success(c, "Dashboard fetched successfully", d)
}
