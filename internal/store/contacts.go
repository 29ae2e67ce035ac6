package store

import (
	"context"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
)

type contactRepo struct{ db *gorm.DB }

func (r *contactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	return wrapErr(r.db.WithContext(ctx).Create(m).Error)
}

func (r *contactRepo) MarkNotified(ctx context.Context, id uint) error {
	return wrapErr(r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("notifie", true).Error)
}

func (r *contactRepo) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error) {
	limit, offset = clampPage(limit, offset)
	var total int64
	q := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	var out []models.ContactMessage
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	return out, total, nil
}
