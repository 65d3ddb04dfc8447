package models

// Frequency of a reminder.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Reminder schedules dose prompts for one medicine. ReminderTimes is copied
// from the medicine schedule when the reminder is created.
type Reminder struct {
	BaseModel
	PatientID     string    `gorm:"size:36;index;not null" json:"patientId"`
	MedicineID    string    `gorm:"size:36;index;not null" json:"medicineId"`
	ReminderTimes []string  `gorm:"serializer:json;type:text" json:"reminderTimes"`
	Frequency     Frequency `gorm:"size:10;not null" json:"frequency"`
	Active        bool      `gorm:"not null" json:"active"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
}
