package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
)

type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

var _ TaskRepository = (*GormTaskRepository)(nil)

func (r *GormTaskRepository) Create(ctx context.Context, t *models.CareTask) error {
	return translate("create task", r.db.WithContext(ctx).Create(t).Error)
}

func (r *GormTaskRepository) Get(ctx context.Context, id string) (*models.CareTask, error) {
	var t models.CareTask
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate("get task", err)
	}
	return &t, nil
}

func (r *GormTaskRepository) ListByPatient(ctx context.Context, patientID string) ([]models.CareTask, error) {
	var out []models.CareTask
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("due_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list tasks", err)
	}
	return out, nil
}

func (r *GormTaskRepository) Complete(ctx context.Context, id string, at time.Time) (*models.CareTask, error) {
	var next *models.CareTask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.CareTask
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		if t.CompletedAt != nil {
			return nil
		}
		// Only the caller whose update flips the row spawns the next occurrence.
		res := tx.Model(&t).Where("completed_at IS NULL").Update("completed_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return nil
		}
		next = t.Next()
		if next == nil {
			return nil
		}
		return tx.Create(next).Error
	})
	if err != nil {
		return nil, translate("complete task", err)
	}
	return next, nil
}
