package store

import (
	"context"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvRepo struct{ db *gorm.DB }

func (r *kvRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var e models.KVEntry
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&e).Error; err != nil {
		return nil, wrapErr(err)
	}
	return []byte(e.Value), nil
}

func (r *kvRepo) Put(ctx context.Context, key string, value []byte) error {
	e := models.KVEntry{Key: key, Value: string(value)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return wrapErr(err)
}
