// Package repository holds the persistence interfaces used by the HTTP
// handlers and their gorm implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type TokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	// FindUsable returns an unrevoked, unexpired token owned by userID.
	FindUsable(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error)
	// Revoke marks the token revoked. Unknown or already revoked tokens
	// return ErrNotFound.
	Revoke(ctx context.Context, token string, now time.Time) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	Get(ctx context.Context, id string) (*models.Patient, error)
	// ListForUser returns patients the user created or cares for.
	ListForUser(ctx context.Context, userID string) ([]models.Patient, error)
	AddCaregiver(ctx context.Context, patientID string, u *models.User) error
}

// HistoryProvider supplies prior observations, newest first.
type HistoryProvider interface {
	Recent(ctx context.Context, patientID string, n int) ([]triage.Vitals, error)
}

type SymptomRepository interface {
	HistoryProvider
	Create(ctx context.Context, s *models.SymptomLog) error
	Get(ctx context.Context, id string) (*models.SymptomLog, error)
	// ListByPatient returns logs newest first. limit <= 0 means all.
	ListByPatient(ctx context.Context, patientID string, limit int) ([]models.SymptomLog, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	Get(ctx context.Context, id string) (*models.Medicine, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Medicine, error)
	ActiveOn(ctx context.Context, patientID string, day time.Time) ([]models.Medicine, error)
	CreateLog(ctx context.Context, l *models.MedicineLog) error
	// LogsBetween returns logs with from <= date < to, oldest first, with
	// the medicine preloaded.
	LogsBetween(ctx context.Context, patientID string, from, to time.Time) ([]models.MedicineLog, error)
}

type ReminderRepository interface {
	Create(ctx context.Context, r *models.Reminder) error
	Get(ctx context.Context, id string) (*models.Reminder, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Reminder, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.CareTask) error
	Get(ctx context.Context, id string) (*models.CareTask, error)
	// ListByPatient returns tasks ordered by due time.
	ListByPatient(ctx context.Context, patientID string) ([]models.CareTask, error)
	// Complete marks the task done and, for repeating tasks, stores and
	// returns the next occurrence.
	Complete(ctx context.Context, id string, at time.Time) (*models.CareTask, error)
}

type FacilityRepository interface {
	ListByType(ctx context.Context, t triage.FacilityType) ([]models.HealthcareFacility, error)
	// Seed inserts facilities whose name is not stored yet and returns the
	// number inserted.
	Seed(ctx context.Context, list []models.HealthcareFacility) (int, error)
}

// Transactor runs fn against a Store whose writes commit together. When fn
// returns an error nothing it wrote is kept.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Store) error) error
}

// Store bundles every repository.
type Store struct {
	Users      UserRepository
	Tokens     TokenRepository
	Patients   PatientRepository
	Symptoms   SymptomRepository
	Medicines  MedicineRepository
	Reminders  ReminderRepository
	Tasks      TaskRepository
	Facilities FacilityRepository

	Tx Transactor
}

// Transaction runs fn atomically. Stores without a Transactor run fn
// directly.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.Tx == nil {
		return fn(s)
	}
	return s.Tx.Transaction(ctx, fn)
}
