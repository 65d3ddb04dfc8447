package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecircle-server/internal/report"
	"carecircle-server/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves downloadable recovery reports.
type ReportHandler struct{ *Env }

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(env *Env) *ReportHandler {
	return &ReportHandler{Env: env}
}

// GetReport renders the patient's report as xlsx (default) or txt.
func (h *ReportHandler) GetReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	if format != "xlsx" && format != "txt" {
		utils.BadRequest(c, "format must be xlsx or txt")
		return
	}
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := h.Now()

	meds, err := h.Store.Medicines.ListByPatient(ctx, p.ID)
	if err != nil {
		h.storeError(c, err, "Medicines")
		return
	}
	logs, err := h.Store.Medicines.LogsBetween(ctx, p.ID, time.Unix(0, 0), now.Add(time.Second))
	if err != nil {
		h.storeError(c, err, "Medicine logs")
		return
	}
	symptoms, err := h.Store.Symptoms.ListByPatient(ctx, p.ID, 0)
	if err != nil {
		h.storeError(c, err, "Symptom logs")
		return
	}

	data := report.Data{
		Patient:     *p,
		Medicines:   meds,
		Logs:        logs,
		Symptoms:    symptoms,
		Latest:      latestResult(symptoms),
		GeneratedAt: now,
	}

	name := "symptom-report-" + now.Format("2006-01-02")
	if format == "txt" {
		utils.Attachment(c, name+".txt", "text/plain; charset=utf-8", []byte(report.DoctorReport(data)))
		return
	}

	b, err := report.Workbook(data)
	if err != nil {
		h.Logger.Error("report workbook failed", zap.String("patient_id", p.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to build report")
		return
	}
	utils.Attachment(c, name+".xlsx", xlsxContentType, b)
}
