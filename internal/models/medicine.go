package models

import "time"

// Medicine is a prescription with its daily dose times ("08:00").
type Medicine struct {
	BaseModel
	PatientID string    `gorm:"size:36;index;not null" json:"patientId"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Dosage    string    `gorm:"size:100;not null" json:"dosage"`
	Schedule  []string  `gorm:"serializer:json;type:text" json:"schedule"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
}

// ActiveOn reports whether the course covers the calendar day of t.
func (m *Medicine) ActiveOn(t time.Time) bool {
	day := startOfDay(t)
	return !startOfDay(m.StartDate).After(day) && !startOfDay(m.EndDate).Before(day)
}

// MedicineStatus is the outcome of one scheduled dose.
type MedicineStatus string

const (
	MedicineTaken  MedicineStatus = "taken"
	MedicineMissed MedicineStatus = "missed"
)

// MedicineLog records whether a dose was taken.
type MedicineLog struct {
	BaseModel
	MedicineID string         `gorm:"size:36;index;not null" json:"medicineId"`
	PatientID  string         `gorm:"size:36;index;not null" json:"patientId"`
	Status     MedicineStatus `gorm:"size:10;not null" json:"status"`
	Date       time.Time      `gorm:"index" json:"date"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns [00:00, next 00:00) for the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := startOfDay(t)
	return start, start.AddDate(0, 0, 1)
}
