package store

import (
	"context"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
)

type formationRepo struct{ db *gorm.DB }

func (r *formationRepo) List(ctx context.Context) ([]models.Formation, error) {
	var out []models.Formation
	if err := r.db.WithContext(ctx).Order("titre asc").Find(&out).Error; err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

func (r *formationRepo) GetBySlug(ctx context.Context, slug string) (models.Formation, error) {
	var f models.Formation
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&f).Error
	return f, wrapErr(err)
}

func (r *formationRepo) Create(ctx context.Context, f *models.Formation) error {
	if f.Etat == "" {
		f.Etat = models.EtatActive
	}
	return wrapErr(r.db.WithContext(ctx).Create(f).Error)
}

// Update replaces every column of the program identified by f.Slug.
func (r *formationRepo) Update(ctx context.Context, f *models.Formation) error {
	existing, err := r.GetBySlug(ctx, f.Slug)
	if err != nil {
		return err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	if f.Etat == "" {
		f.Etat = existing.Etat
	}
	return wrapErr(r.db.WithContext(ctx).Save(f).Error)
}

func (r *formationRepo) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Formation{})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
