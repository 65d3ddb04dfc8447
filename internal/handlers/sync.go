package handlers

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"

	"carecircle-server/internal/models"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

// SyncHandler replays entries captured while the client was offline.
type SyncHandler struct{ *Env }

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(env *Env) *SyncHandler {
	return &SyncHandler{Env: env}
}

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	PatientID    string               `json:"patientId" binding:"required"`
	Symptoms     []VitalsInput        `json:"symptoms" binding:"max=200,dive"`
	MedicineLogs []LogMedicineRequest `json:"medicineLogs" binding:"max=500,dive"`
}

// SyncResponse counts what was stored.
type SyncResponse struct {
	Symptoms     int `json:"symptoms"`
	MedicineLogs int `json:"medicineLogs"`
	Referrals    int `json:"referrals"`
}

// Sync stores a batch captured offline. The whole batch is checked before
// anything is written and then stored in one transaction, so a rejected
// batch leaves nothing behind and can be retried as is. Symptoms are
// replayed oldest first; alerts go out only after the commit.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req SyncRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, ok := h.authorizePatient(c, req.PatientID)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := h.Now()

	vitals := make([]triage.Vitals, 0, len(req.Symptoms))
	for i, in := range req.Symptoms {
		v, err := in.Vitals(now)
		if err != nil {
			utils.BadRequest(c, fmt.Sprintf("symptoms[%d]: %s", i, err))
			return
		}
		vitals = append(vitals, v)
	}
	sort.SliceStable(vitals, func(i, j int) bool { return vitals[i].RecordedAt.Before(vitals[j].RecordedAt) })

	doses := make([]*models.MedicineLog, 0, len(req.MedicineLogs))
	meds := make(map[string]*models.Medicine, len(req.MedicineLogs))
	for i, l := range req.MedicineLogs {
		m, ok := meds[l.MedicineID]
		if !ok {
			var err error
			if m, err = h.Store.Medicines.Get(ctx, l.MedicineID); err != nil {
				h.storeError(c, err, "Medicine")
				return
			}
			meds[m.ID] = m
		}
		if m.PatientID != p.ID {
			utils.BadRequest(c, fmt.Sprintf("medicineLogs[%d]: medicine does not belong to this patient", i))
			return
		}
		doses = append(doses, h.doseLog(m, l))
	}

	stored := make([]triage.Result, 0, len(vitals))
	err := h.Store.Transaction(ctx, func(tx *repository.Store) error {
		stored = stored[:0]
		for _, v := range vitals {
			_, res, err := h.ingest(ctx, tx, p.ID, v)
			if err != nil {
				return err
			}
			stored = append(stored, res)
		}
		for _, d := range doses {
			if err := tx.Medicines.CreateLog(ctx, d); err != nil {
				return fmt.Errorf("store medicine log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		h.storeError(c, err, "Offline batch")
		return
	}

	var resp SyncResponse
	for _, res := range stored {
		h.afterSymptom(c, p, res, "sync")
		resp.Symptoms++
		if res.ReferralRequired {
			resp.Referrals++
		}
	}
	for _, d := range doses {
		h.afterDose(c, p, meds[d.MedicineID], d, "sync")
		resp.MedicineLogs++
	}

	utils.Success(c, "Offline data synced successfully", resp)
}
