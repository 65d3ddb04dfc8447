package models

// Patient is a person under care. Caregivers are the users who may read
// and write the patient's records and who receive alerts.
type Patient struct {
	BaseModel
	Name           string `gorm:"size:150;not null" json:"name"`
	Age            int    `gorm:"not null" json:"age"`
	Gender         Gender `gorm:"size:10;not null" json:"gender"`
	Condition      string `gorm:"size:255" json:"condition"`
	CaregiverPhone string `gorm:"size:32" json:"caregiverPhone"`
	CreatedByID    string `gorm:"size:36;index" json:"createdById"`

	Caregivers []User `gorm:"many2many:patient_caregivers;" json:"caregivers,omitempty"`
}

// HasCaregiver reports whether userID is linked to the patient.
func (p *Patient) HasCaregiver(userID string) bool {
	if p.CreatedByID == userID {
		return true
	}
	for _, c := range p.Caregivers {
		if c.ID == userID {
			return true
		}
	}
	return false
}
