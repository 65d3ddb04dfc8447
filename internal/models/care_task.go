package models

import "time"

// TaskCategory groups care tasks on the caregiver checklist.
type TaskCategory string

const (
	TaskVitals     TaskCategory = "vitals"
	TaskExercise   TaskCategory = "exercise"
	TaskDiet       TaskCategory = "diet"
	TaskHygiene    TaskCategory = "hygiene"
	TaskMedication TaskCategory = "medication"
)

// TaskRepeat is how often a task recurs.
type TaskRepeat string

const (
	RepeatNone   TaskRepeat = "none"
	RepeatDaily  TaskRepeat = "daily"
	RepeatWeekly TaskRepeat = "weekly"
)

// TaskStatus is derived, never stored.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskOverdue TaskStatus = "overdue"
	TaskDone    TaskStatus = "done"
)

// CareTask is a caregiver checklist item for a patient.
type CareTask struct {
	BaseModel
	PatientID   string       `gorm:"size:36;index;not null" json:"patientId"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Category    TaskCategory `gorm:"size:20;not null" json:"category"`
	DueAt       time.Time    `gorm:"index" json:"dueAt"`
	Repeat      TaskRepeat   `gorm:"column:recurrence;size:10;not null" json:"repeat"`
	Notes       string       `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	CreatedByID string       `gorm:"size:36" json:"createdById"`
}

// StatusAt computes the task status relative to now.
func (t *CareTask) StatusAt(now time.Time) TaskStatus {
	switch {
	case t.CompletedAt != nil:
		return TaskDone
	case now.After(t.DueAt):
		return TaskOverdue
	default:
		return TaskPending
	}
}

// Next returns the following occurrence of a repeating task, or nil.
func (t *CareTask) Next() *CareTask {
	var due time.Time
	switch t.Repeat {
	case RepeatDaily:
		due = t.DueAt.AddDate(0, 0, 1)
	case RepeatWeekly:
		due = t.DueAt.AddDate(0, 0, 7)
	default:
		return nil
	}
	return &CareTask{
		PatientID:   t.PatientID,
		Title:       t.Title,
		Category:    t.Category,
		DueAt:       due,
		Repeat:      t.Repeat,
		Notes:       t.Notes,
		CreatedByID: t.CreatedByID,
	}
}
