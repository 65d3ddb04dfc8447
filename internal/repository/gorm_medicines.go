package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
)

type GormMedicineRepository struct {
	db *gorm.DB
}

func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

var _ MedicineRepository = (*GormMedicineRepository)(nil)

func (r *GormMedicineRepository) Create(ctx context.Context, m *models.Medicine) error {
	return translate("create medicine", r.db.WithContext(ctx).Create(m).Error)
}

func (r *GormMedicineRepository) Get(ctx context.Context, id string) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("get medicine", err)
	}
	return &m, nil
}

func (r *GormMedicineRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Medicine, error) {
	var out []models.Medicine
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("start_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list medicines", err)
	}
	return out, nil
}

func (r *GormMedicineRepository) ActiveOn(ctx context.Context, patientID string, day time.Time) ([]models.Medicine, error) {
	start, end := models.DayBounds(day)
	var out []models.Medicine
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND start_date < ? AND end_date >= ?", patientID, end, start).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list active medicines", err)
	}
	return out, nil
}

func (r *GormMedicineRepository) CreateLog(ctx context.Context, l *models.MedicineLog) error {
	return translate("create medicine log", r.db.WithContext(ctx).Omit("Medicine").Create(l).Error)
}

func (r *GormMedicineRepository) LogsBetween(ctx context.Context, patientID string, from, to time.Time) ([]models.MedicineLog, error) {
	var out []models.MedicineLog
	err := r.db.WithContext(ctx).
		Preload("Medicine").
		Where("patient_id = ? AND date >= ? AND date < ?", patientID, from, to).
		Order("date ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list medicine logs", err)
	}
	return out, nil
}
