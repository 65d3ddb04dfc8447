package repository

import (
	"context"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

type GormSymptomRepository struct {
	db *gorm.DB
}

func NewGormSymptomRepository(db *gorm.DB) *GormSymptomRepository {
	return &GormSymptomRepository{db: db}
}

var _ SymptomRepository = (*GormSymptomRepository)(nil)

func (r *GormSymptomRepository) Create(ctx context.Context, s *models.SymptomLog) error {
	return translate("create symptom log", r.db.WithContext(ctx).Create(s).Error)
}

func (r *GormSymptomRepository) Get(ctx context.Context, id string) (*models.SymptomLog, error) {
	var s models.SymptomLog
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate("get symptom log", err)
	}
	return &s, nil
}

func (r *GormSymptomRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]models.SymptomLog, error) {
	q := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.SymptomLog
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list symptom logs", err)
	}
	return out, nil
}

func (r *GormSymptomRepository) Recent(ctx context.Context, patientID string, n int) ([]triage.Vitals, error) {
	if n <= 0 {
		return nil, nil
	}
	logs, err := r.ListByPatient(ctx, patientID, n)
	if err != nil {
		return nil, err
	}
	return models.HistoryVitals(logs), nil
}
