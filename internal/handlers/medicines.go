package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/utils"
)

// MedicineHandler manages prescriptions and dose logs.
type MedicineHandler struct{ *Env }

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(env *Env) *MedicineHandler {
	return &MedicineHandler{Env: env}
}

// CreateMedicineRequest is the body of POST /medicines. Dates accept
// "2006-01-02" or RFC 3339.
type CreateMedicineRequest struct {
	PatientID string   `json:"patientId" binding:"required"`
	Name      string   `json:"name" binding:"required,max=150"`
	Dosage    string   `json:"dosage" binding:"required,max=100"`
	Schedule  []string `json:"schedule" binding:"required,min=1,max=12,dive,hhmm"`
	StartDate string   `json:"startDate" binding:"required"`
	EndDate   string   `json:"endDate" binding:"required"`
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date (YYYY-MM-DD)", field)
	}
	return t, nil
}

// CreateMedicine adds a prescription to a patient.
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req CreateMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if end.Before(start) {
		utils.BadRequest(c, "endDate must not be before startDate")
		return
	}
	p, ok := h.authorizePatient(c, req.PatientID)
	if !ok {
		return
	}

	m := models.Medicine{
		PatientID: p.ID,
		Name:      strings.TrimSpace(req.Name),
		Dosage:    strings.TrimSpace(req.Dosage),
		Schedule:  req.Schedule,
		StartDate: start,
		EndDate:   end,
	}
	if err := h.Store.Medicines.Create(c.Request.Context(), &m); err != nil {
		h.storeError(c, err, "Medicine")
		return
	}
	h.Dashboard.Invalidate(c.Request.Context(), p.ID)
	utils.Created(c, "Medicine added successfully", m)
}

// GetMedicinesForPatient lists a patient's prescriptions.
func (h *MedicineHandler) GetMedicinesForPatient(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	list, err := h.Store.Medicines.ListByPatient(c.Request.Context(), p.ID)
	if err != nil {
		h.storeError(c, err, "Medicines")
		return
	}
	utils.Success(c, "Medicines fetched successfully", list)
}

// GetMedicineByID returns one prescription.
func (h *MedicineHandler) GetMedicineByID(c *gin.Context) {
	m, ok := h.loadMedicine(c, c.Param("id"))
	if !ok {
		return
	}
	utils.Success(c, "Medicine fetched successfully", m)
}

func (e *Env) loadMedicine(c *gin.Context, id string) (*models.Medicine, bool) {
	m, err := e.Store.Medicines.Get(c.Request.Context(), id)
	if err != nil {
		e.storeError(c, err, "Medicine")
		return nil, false
	}
	if _, ok := e.authorizePatient(c, m.PatientID); !ok {
		return nil, false
	}
	return m, true
}

// LogMedicineRequest is the body of POST /medicines/log.
type LogMedicineRequest struct {
	MedicineID string     `json:"medicineId" binding:"required"`
	Status     string     `json:"status" binding:"required,oneof=taken missed"`
	Date       *time.Time `json:"date"`
}

// LogMedicine records a dose. A missed dose alerts the caregivers.
func (h *MedicineHandler) LogMedicine(c *gin.Context) {
	var req LogMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	l, ok := h.logDose(c, req, "live")
	if !ok {
		return
	}
	utils.Created(c, "Medicine log saved", l)
}

// logDose stores one dose and raises the missed-dose alert. It writes the
// error response itself.
func (e *Env) logDose(c *gin.Context, req LogMedicineRequest, source string) (*models.MedicineLog, bool) {
	m, err := e.Store.Medicines.Get(c.Request.Context(), req.MedicineID)
	if err != nil {
		e.storeError(c, err, "Medicine")
		return nil, false
	}
	p, ok := e.authorizePatient(c, m.PatientID)
	if !ok {
		return nil, false
	}

	l := e.doseLog(m, req)
	if err := e.Store.Medicines.CreateLog(c.Request.Context(), l); err != nil {
		e.storeError(c, err, "Medicine log")
		return nil, false
	}
	e.afterDose(c, p, m, l, source)
	return l, true
}

// doseLog builds the row for req, dated now when the client sent no date.
func (e *Env) doseLog(m *models.Medicine, req LogMedicineRequest) *models.MedicineLog {
	at := e.Now()
	if req.Date != nil && !req.Date.IsZero() {
		at = *req.Date
	}
	return &models.MedicineLog{
		MedicineID: m.ID,
		PatientID:  m.PatientID,
		Status:     models.MedicineStatus(req.Status),
		Date:       at,
	}
}

// afterDose runs once a dose is stored.
func (e *Env) afterDose(c *gin.Context, p *models.Patient, m *models.Medicine, l *models.MedicineLog, source string) {
	e.Dashboard.Invalidate(c.Request.Context(), p.ID)
	if l.Status != models.MedicineMissed {
		return
	}
	e.Logger.Info("dose missed",
		zap.String("patient_id", p.ID),
		zap.String("medicine_id", m.ID),
		zap.String("source", source))
	e.notifyCaregivers(c, notify.MissedDoseAlert(p, m, l.Date))
}

// ReminderHandler manages dose reminders.
type ReminderHandler struct{ *Env }

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(env *Env) *ReminderHandler {
	return &ReminderHandler{Env: env}
}

// CreateReminderRequest is the body of POST /reminders.
type CreateReminderRequest struct {
	PatientID  string `json:"patientId" binding:"required"`
	MedicineID string `json:"medicineId" binding:"required"`
	Frequency  string `json:"frequency" binding:"omitempty,oneof=daily weekly"`
}

// CreateReminder schedules reminders at the medicine's dose times.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, ok := h.authorizePatient(c, req.PatientID)
	if !ok {
		return
	}
	m, err := h.Store.Medicines.Get(c.Request.Context(), req.MedicineID)
	if err != nil {
		h.storeError(c, err, "Medicine")
		return
	}
	if m.PatientID != p.ID {
		utils.BadRequest(c, "Medicine does not belong to this patient")
		return
	}

	freq := models.FrequencyDaily
	if req.Frequency != "" {
		freq = models.Frequency(req.Frequency)
	}
	r := models.Reminder{
		PatientID:     p.ID,
		MedicineID:    m.ID,
		ReminderTimes: append([]string(nil), m.Schedule...),
		Frequency:     freq,
		Active:        true,
	}
	if err := h.Store.Reminders.Create(c.Request.Context(), &r); err != nil {
		h.storeError(c, err, "Reminder")
		return
	}
	r.Medicine = m
	utils.Created(c, "Reminder created successfully", r)
}

// GetRemindersForPatient lists a patient's reminders.
func (h *ReminderHandler) GetRemindersForPatient(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	list, err := h.Store.Reminders.ListByPatient(c.Request.Context(), p.ID)
	if err != nil {
		h.storeError(c, err, "Reminders")
		return
	}
	utils.Success(c, "Reminders fetched successfully", list)
}

// SetReminderActiveRequest is the body of PATCH /reminders/:id/active.
type SetReminderActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetReminderActive pauses or resumes a reminder.
func (h *ReminderHandler) SetReminderActive(c *gin.Context) {
	var req SetReminderActiveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	r, err := h.Store.Reminders.Get(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, err, "Reminder")
		return
	}
	if _, ok := h.authorizePatient(c, r.PatientID); !ok {
		return
	}
	if err := h.Store.Reminders.SetActive(ctx, r.ID, *req.Active); err != nil {
		h.storeError(c, err, "Reminder")
		return
	}
	r.Active = *req.Active
	utils.Success(c, "Reminder updated successfully", r)
}
