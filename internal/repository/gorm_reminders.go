package repository

import (
	"context"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
)

type GormReminderRepository struct {
	db *gorm.DB
}

func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

var _ ReminderRepository = (*GormReminderRepository)(nil)

func (r *GormReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	return translate("create reminder", r.db.WithContext(ctx).Omit("Medicine").Create(rem).Error)
}

func (r *GormReminderRepository) Get(ctx context.Context, id string) (*models.Reminder, error) {
	var rem models.Reminder
	if err := r.db.WithContext(ctx).Preload("Medicine").First(&rem, "id = ?", id).Error; err != nil {
		return nil, translate("get reminder", err)
	}
	return &rem, nil
}

func (r *GormReminderRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Reminder, error) {
	var out []models.Reminder
	err := r.db.WithContext(ctx).
		Preload("Medicine").
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list reminders", err)
	}
	return out, nil
}

func (r *GormReminderRepository) SetActive(ctx context.Context, id string, active bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rem models.Reminder
		if err := tx.Select("id").First(&rem, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&rem).Update("active", active).Error
	})
	return translate("set reminder active", err)
}
