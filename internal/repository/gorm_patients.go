package repository

import (
	"context"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
)

type GormPatientRepository struct {
	db *gorm.DB
}

func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

var _ PatientRepository = (*GormPatientRepository)(nil)

func (r *GormPatientRepository) Create(ctx context.Context, p *models.Patient) error {
	return translate("create patient", r.db.WithContext(ctx).Create(p).Error)
}

func (r *GormPatientRepository) Get(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).Preload("Caregivers").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("get patient", err)
	}
	return &p, nil
}

func (r *GormPatientRepository) ListForUser(ctx context.Context, userID string) ([]models.Patient, error) {
	db := r.db.WithContext(ctx)
	linked := db.Table("patient_caregivers").Select("patient_id").Where("user_id = ?", userID)

	var out []models.Patient
	err := db.Preload("Caregivers").
		Where("created_by_id = ?", userID).
		Or("id IN (?)", linked).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list patients", err)
	}
	return out, nil
}

func (r *GormPatientRepository) AddCaregiver(ctx context.Context, patientID string, u *models.User) error {
	p := &models.Patient{BaseModel: models.BaseModel{ID: patientID}}
	err := r.db.WithContext(ctx).Model(p).Association("Caregivers").Append(u)
	return translate("add caregiver", err)
}
