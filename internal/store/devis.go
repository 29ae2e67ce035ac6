package store

import (
	"context"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
)

type devisRepo struct{ db *gorm.DB }

// Create inserts d. A reference already taken yields ErrDuplicate.
func (r *devisRepo) Create(ctx context.Context, d *models.DevisRecord) error {
	return wrapErr(r.db.WithContext(ctx).Create(d).Error)
}

func (r *devisRepo) GetByReference(ctx context.Context, ref string) (models.DevisRecord, error) {
	var d models.DevisRecord
	err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&d).Error
	return d, wrapErr(err)
}

func (r *devisRepo) List(ctx context.Context, limit, offset int) ([]models.DevisRecord, int64, error) {
	limit, offset = clampPage(limit, offset)
	var total int64
	q := r.db.WithContext(ctx).Model(&models.DevisRecord{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	var out []models.DevisRecord
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	return out, total, nil
}
