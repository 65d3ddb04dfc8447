package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NewGormStore wires every repository to db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:      NewGormUserRepository(db),
		Tokens:     NewGormTokenRepository(db),
		Patients:   NewGormPatientRepository(db),
		Symptoms:   NewGormSymptomRepository(db),
		Medicines:  NewGormMedicineRepository(db),
		Reminders:  NewGormReminderRepository(db),
		Tasks:      NewGormTaskRepository(db),
		Facilities: NewGormFacilityRepository(db),
		Tx:         gormTransactor{db},
	}
}

type gormTransactor struct{ db *gorm.DB }

func (g gormTransactor) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

// translate maps gorm sentinel errors onto the package errors.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
