package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

// VitalsInput is the wire form of one observation.
type VitalsInput struct {
	PainLevel     int        `json:"painLevel" binding:"required,min=1,max=10"`
	Temperature   *float64   `json:"temperature"`
	Unit          string     `json:"unit" binding:"omitempty,oneof=F C f c"`
	BloodPressure string     `json:"bloodPressure" binding:"omitempty,bloodpressure"`
	Notes         string     `json:"notes" binding:"max=2000"`
	RecordedAt    *time.Time `json:"recordedAt"`
}

// Vitals converts the input, stamping it with now when no time was sent.
func (in VitalsInput) Vitals(now time.Time) (triage.Vitals, error) {
	unit, err := triage.ParseUnit(in.Unit)
	if err != nil {
		return triage.Vitals{}, err
	}
	sys, dia, err := triage.ParseBloodPressure(in.BloodPressure)
	if err != nil {
		return triage.Vitals{}, err
	}
	at := now
	if in.RecordedAt != nil && !in.RecordedAt.IsZero() {
		at = *in.RecordedAt
	}
	return triage.Vitals{
		PainLevel:   in.PainLevel,
		Temperature: triage.NormalizeTemperature(in.Temperature, unit),
		Systolic:    sys,
		Diastolic:   dia,
		Notes:       in.Notes,
		RecordedAt:  at,
	}, nil
}

// SymptomHandler records observations and classifies them.
type SymptomHandler struct{ *Env }

// NewSymptomHandler creates a new SymptomHandler.
func NewSymptomHandler(env *Env) *SymptomHandler {
	return &SymptomHandler{Env: env}
}

// CreateSymptomRequest is the body of POST /symptoms.
type CreateSymptomRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	VitalsInput
}

// SymptomResponse pairs the stored log with the full evaluation.
type SymptomResponse struct {
	Log    *models.SymptomLog `json:"log"`
	Triage triage.Result      `json:"triage"`
}

// CreateSymptom stores an observation with its triage outcome.
func (h *SymptomHandler) CreateSymptom(c *gin.Context) {
	var req CreateSymptomRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	v, err := req.Vitals(h.Now())
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	p, ok := h.authorizePatient(c, req.PatientID)
	if !ok {
		return
	}

	log, res, err := h.record(c, p, v, "symptom_log")
	if err != nil {
		h.storeError(c, err, "Symptom log")
		return
	}
	utils.Created(c, "Symptom logged successfully", SymptomResponse{Log: log, Triage: res})
}

// record classifies v against the stored history, persists it and runs the
// follow-up effects. Live observations take this path.
func (e *Env) record(c *gin.Context, p *models.Patient, v triage.Vitals, source string) (*models.SymptomLog, triage.Result, error) {
	log, res, err := e.ingest(c.Request.Context(), e.Store, p.ID, v)
	if err != nil {
		return nil, triage.Result{}, err
	}
	e.afterSymptom(c, p, res, source)
	return log, res, nil
}

// ingest classifies v against the history in store and saves it. It has no
// side effects beyond the write, so it can run inside a transaction.
func (e *Env) ingest(ctx context.Context, store *repository.Store, patientID string, v triage.Vitals) (*models.SymptomLog, triage.Result, error) {
	history, err := store.Symptoms.Recent(ctx, patientID, historyDepth)
	if err != nil {
		return nil, triage.Result{}, fmt.Errorf("load history: %w", err)
	}

	res := e.Classifier.Evaluate(v, history)

	log := models.NewSymptomLog(patientID, v)
	log.ApplyTriage(res)
	if err := store.Symptoms.Create(ctx, log); err != nil {
		return nil, triage.Result{}, fmt.Errorf("store symptom log: %w", err)
	}
	return log, res, nil
}

// afterSymptom runs once a log is durably stored: metrics, cache
// invalidation and the referral alert.
func (e *Env) afterSymptom(c *gin.Context, p *models.Patient, res triage.Result, source string) {
	e.Metrics.Observe(source, res)
	e.Dashboard.Invalidate(c.Request.Context(), p.ID)
	e.Logger.Info("symptom triaged",
		zap.String("patient_id", p.ID),
		zap.String("tier", res.Tier.String()),
		zap.Bool("referral", res.ReferralRequired),
		zap.String("source", source))

	if res.ReferralRequired {
		e.notifyCaregivers(c, notify.TriageAlert(p, res))
	}
}

// GetSymptomsForPatient lists a patient's logs, newest first.
func (h *SymptomHandler) GetSymptomsForPatient(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	logs, err := h.Store.Symptoms.ListByPatient(c.Request.Context(), p.ID, 0)
	if err != nil {
		h.storeError(c, err, "Symptom logs")
		return
	}
	utils.Success(c, "Symptom logs fetched successfully", logs)
}

// GetSymptomByID returns one log.
func (h *SymptomHandler) GetSymptomByID(c *gin.Context) {
	log, err := h.Store.Symptoms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "Symptom log")
		return
	}
	if _, ok := h.authorizePatient(c, log.PatientID); !ok {
		return
	}
	utils.Success(c, "Symptom log fetched successfully", log)
}

// TriageRequest is the body of POST /triage. History entries are newest
// first. When PatientID is set, stored history is used instead.
type TriageRequest struct {
	PatientID string        `json:"patientId"`
	Current   VitalsInput   `json:"current"`
	History   []VitalsInput `json:"history" binding:"max=10,dive"`
}

// Evaluate classifies vitals without storing anything.
func (h *SymptomHandler) Evaluate(c *gin.Context) {
	var req TriageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	now := h.Now()
	current, err := req.Current.Vitals(now)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var history []triage.Vitals
	if req.PatientID != "" {
		p, ok := h.authorizePatient(c, req.PatientID)
		if !ok {
			return
		}
		history, err = h.Store.Symptoms.Recent(c.Request.Context(), p.ID, historyDepth)
		if err != nil {
			h.storeError(c, err, "Symptom history")
			return
		}
	} else {
		history, err = inlineHistory(req.History, now)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	res := h.Classifier.Evaluate(current, history)
	h.Metrics.Observe("evaluate", res)
	utils.Success(c, "Triage evaluated", res)
}

func inlineHistory(in []VitalsInput, now time.Time) ([]triage.Vitals, error) {
	out := make([]triage.Vitals, 0, len(in))
	for i, h := range in {
		v, err := h.Vitals(now)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// latestResult rebuilds the stored outcome of the newest log.
func latestResult(logs []models.SymptomLog) *triage.Result {
	if len(logs) == 0 {
		return nil
	}
	l := logs[0]
	return &triage.Result{
		Tier:             l.Tier(),
		Advice:           l.Advice,
		ReferralRequired: l.ReferralRequired,
		Reasons:          append([]string(nil), l.Reasons...),
		EvaluatedAt:      l.RecordedAt,
	}
}
