package triage

// ReferralLevel is where a patient should be directed for a given tier.
type ReferralLevel string

const (
	ReferralHome      ReferralLevel = "home"
	ReferralPrimary   ReferralLevel = "primary"
	ReferralEmergency ReferralLevel = "emergency"
)

// FacilityType is the kind of healthcare facility to search for.
type FacilityType string

const (
	FacilityClinic   FacilityType = "clinic"
	FacilityHospital FacilityType = "hospital"
	FacilityPHC      FacilityType = "phc"
)

// ReferralAdvice pairs a referral level with guidance text.
type ReferralAdvice struct {
	Level  ReferralLevel `json:"level"`
	Advice string        `json:"advice"`
}

// Referral maps a tier to referral guidance.
func Referral(t Tier) ReferralAdvice {
	switch t {
	case Severe:
		return ReferralAdvice{Level: ReferralEmergency, Advice: "Visit the nearest hospital immediately"}
	case Moderate:
		return ReferralAdvice{Level: ReferralPrimary, Advice: "Consult a primary healthcare center"}
	default:
		return ReferralAdvice{Level: ReferralHome, Advice: "Continue home care and monitoring"}
	}
}

// FacilityFor picks the facility type to search for a tier.
func FacilityFor(t Tier) FacilityType {
	if t == Severe {
		return FacilityHospital
	}
	return FacilityClinic
}
