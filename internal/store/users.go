package store

import (
	"context"
	"strings"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
)

type userRepo struct{ db *gorm.DB }

func (r *userRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, wrapErr(err)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	return u, wrapErr(err)
}

type uploadRepo struct{ db *gorm.DB }

func (r *uploadRepo) Create(ctx context.Context, u *models.Upload) error {
	return wrapErr(r.db.WithContext(ctx).Create(u).Error)
}
