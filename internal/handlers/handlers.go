// Package handlers implements the CareCircle REST endpoints on gin.
package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/cache"
	"carecircle-server/internal/config"
	"carecircle-server/internal/middleware"
	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/referral"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

// Env carries the collaborators shared by all handlers.
type Env struct {
	Store      *repository.Store
	Cfg        *config.Config
	Classifier *triage.Classifier
	Metrics    *triage.Metrics
	Notifier   notify.Notifier
	Dashboard  *cache.DashboardCache
	Referral   *referral.Service
	Logger     *zap.Logger
	Now        func() time.Time
}

// Defaults fills optional collaborators.
func (e *Env) Defaults() *Env {
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.Notifier == nil {
		e.Notifier = notify.Nop{}
	}
	if e.Classifier == nil {
		e.Classifier = triage.NewClassifier(triage.DefaultThresholds())
	}
	return e
}

// historyDepth is how many prior observations feed the trend rules.
const historyDepth = 2

// storeError answers for a repository failure.
func (e *Env) storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFound(c, what+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		utils.Conflict(c, what+" already exists")
	default:
		e.Logger.Error("store failure",
			zap.String("entity", what),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		utils.InternalServerError(c, "Failed to access "+what)
	}
}

// authorizePatient loads the patient and checks that the caller may act on
// it. Admins may act on every patient.
func (e *Env) authorizePatient(c *gin.Context, patientID string) (*models.Patient, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	p, err := e.Store.Patients.Get(c.Request.Context(), patientID)
	if err != nil {
		e.storeError(c, err, "Patient")
		return nil, false
	}
	if role, _ := middleware.GetUserRoleFromContext(c); role != models.RoleAdmin && !p.HasCaregiver(userID) {
		utils.Forbidden(c, "You are not a caregiver for this patient")
		return nil, false
	}
	return p, true
}

// notifyCaregivers sends an alert and logs delivery failures. A failed
// alert never fails the request that raised it.
func (e *Env) notifyCaregivers(c *gin.Context, a notify.Alert) {
	if err := e.Notifier.NotifyCaregivers(c.Request.Context(), a); err != nil {
		e.Logger.Warn("caregiver alert failed",
			zap.String("kind", string(a.Kind)),
			zap.String("patient_id", a.PatientID),
			zap.Error(err))
	}
}
