package repository

import (
	"context"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
	"carecircle-server/internal/triage"
)

type GormFacilityRepository struct {
	db *gorm.DB
}

func NewGormFacilityRepository(db *gorm.DB) *GormFacilityRepository {
	return &GormFacilityRepository{db: db}
}

var _ FacilityRepository = (*GormFacilityRepository)(nil)

func (r *GormFacilityRepository) ListByType(ctx context.Context, t triage.FacilityType) ([]models.HealthcareFacility, error) {
	var out []models.HealthcareFacility
	if err := r.db.WithContext(ctx).Where("type = ?", t).Find(&out).Error; err != nil {
		return nil, translate("list facilities", err)
	}
	return out, nil
}

func (r *GormFacilityRepository) Seed(ctx context.Context, list []models.HealthcareFacility) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range list {
			var n int64
			if err := tx.Model(&models.HealthcareFacility{}).Where("name = ?", list[i].Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			f := list[i]
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, translate("seed facilities", err)
	}
	return inserted, nil
}
