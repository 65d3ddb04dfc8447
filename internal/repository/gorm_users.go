package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"carecircle-server/internal/models"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ UserRepository = (*GormUserRepository)(nil)

func (r *GormUserRepository) Create(ctx context.Context, u *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

func (r *GormUserRepository) Update(ctx context.Context, u *models.User) error {
	return translate("update user", r.db.WithContext(ctx).Save(u).Error)
}

type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

var _ TokenRepository = (*GormTokenRepository)(nil)

func (r *GormTokenRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	return translate("store refresh token", r.db.WithContext(ctx).Create(t).Error)
}

func (r *GormTokenRepository) FindUsable(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", token, userID, false, now).
		First(&t).Error
	if err != nil {
		return nil, translate("find refresh token", err)
	}
	return &t, nil
}

func (r *GormTokenRepository) Revoke(ctx context.Context, token string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Updates(map[string]any{"is_revoked": true, "expires_at": now})
	if res.Error != nil {
		return translate("revoke refresh token", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
