package models

import "carecircle-server/internal/triage"

// HealthcareFacility is an offline directory entry used when online place
// search is unavailable.
type HealthcareFacility struct {
	BaseModel
	Name      string              `gorm:"size:200;not null" json:"name"`
	Type      triage.FacilityType `gorm:"size:16;index;not null" json:"type"`
	Address   string              `gorm:"size:255" json:"address"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
}

// DefaultFacilities is the seed directory.
func DefaultFacilities() []HealthcareFacility {
	return []HealthcareFacility{
		{
			Name:      "Primary Health Center Andheri",
			Type:      triage.FacilityPHC,
			Address:   "Andheri East, Mumbai",
			Latitude:  19.1136,
			Longitude: 72.8697,
		},
		{
			Name:      "JJ Hospital",
			Type:      triage.FacilityHospital,
			Address:   "Byculla, Mumbai",
			Latitude:  18.975,
			Longitude: 72.829,
		},
		{
			Name:      "Andheri Community Clinic",
			Type:      triage.FacilityClinic,
			Address:   "Andheri West, Mumbai",
			Latitude:  19.1197,
			Longitude: 72.8464,
		},
	}
}
