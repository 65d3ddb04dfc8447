package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/middleware"
	"carecircle-server/internal/models"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/utils"
)

// PatientHandler manages patients and their caregivers.
type PatientHandler struct{ *Env }

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(env *Env) *PatientHandler {
	return &PatientHandler{Env: env}
}

// CreatePatientRequest is the body of POST /patients.
type CreatePatientRequest struct {
	Name           string `json:"name" binding:"required,max=150"`
	Age            int    `json:"age" binding:"min=0,max=120"`
	Gender         string `json:"gender" binding:"required,oneof=male female other"`
	Condition      string `json:"condition" binding:"max=255"`
	CaregiverPhone string `json:"caregiverPhone" binding:"max=32"`
}

// CreatePatient registers a patient. The caller becomes its first caregiver.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	p := models.Patient{
		Name:           strings.TrimSpace(req.Name),
		Age:            req.Age,
		Gender:         models.Gender(req.Gender),
		Condition:      req.Condition,
		CaregiverPhone: req.CaregiverPhone,
		CreatedByID:    userID,
	}
	if err := h.Store.Patients.Create(c.Request.Context(), &p); err != nil {
		h.storeError(c, err, "Patient")
		return
	}

	h.Logger.Info("patient created", zap.String("patient_id", p.ID), zap.String("user_id", userID))
	utils.Created(c, "Patient created successfully", p)
}

// GetPatients lists the patients the caller looks after.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	list, err := h.Store.Patients.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "Patients")
		return
	}
	utils.Success(c, "Patients fetched successfully", list)
}

// GetPatientByID returns one patient with its caregivers.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	utils.Success(c, "Patient fetched successfully", p)
}

// AddCaregiverRequest is the body of POST /patients/:patientId/caregivers.
type AddCaregiverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AddCaregiver links an existing user to the patient by email.
func (h *PatientHandler) AddCaregiver(c *gin.Context) {
	var req AddCaregiverRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	u, err := h.Store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		utils.NotFound(c, "No user with this email")
		return
	}
	if err != nil {
		h.storeError(c, err, "User")
		return
	}
	if p.HasCaregiver(u.ID) {
		utils.Success(c, "User is already a caregiver", p)
		return
	}

	if err := h.Store.Patients.AddCaregiver(ctx, p.ID, u); err != nil {
		h.storeError(c, err, "Patient")
		return
	}
	updated, err := h.Store.Patients.Get(ctx, p.ID)
	if err != nil {
		h.storeError(c, err, "Patient")
		return
	}
	utils.Success(c, "Caregiver added successfully", updated)
}
