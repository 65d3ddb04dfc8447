package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

// ReferralHandler answers where a patient should go.
type ReferralHandler struct{ *Env }

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(env *Env) *ReferralHandler {
	return &ReferralHandler{Env: env}
}

// ReferralAdviceRequest is the body of POST /referral/advice.
type ReferralAdviceRequest struct {
	Severity string `json:"severity" binding:"required,tier"`
}

// Advice maps a severity to a referral level.
func (h *ReferralHandler) Advice(c *gin.Context) {
	var req ReferralAdviceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	tier, _ := triage.ParseTier(req.Severity)
	utils.Success(c, "Referral advice", triage.Referral(tier))
}

// Facility finds the nearest suitable facility to lat,lng.
func (h *ReferralHandler) Facility(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		utils.BadRequest(c, "lat must be a latitude")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		utils.BadRequest(c, "lng must be a longitude")
		return
	}
	tier := triage.Mild
	if s := c.Query("severity"); s != "" {
		if tier, err = triage.ParseTier(s); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	res, err := h.Referral.Find(c.Request.Context(), lat, lng, tier)
	if err != nil {
		h.storeError(c, err, "Facilities")
		return
	}
	if res.Facility == nil {
		utils.NotFound(c, "No facility found nearby")
		return
	}
	utils.Success(c, "Facility found", res)
}
