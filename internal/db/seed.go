package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diewo77/go-formations/auth"
	"github.com/diewo77/go-formations/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed seed/formations.json
var seedFS embed.FS

// SeedFormations loads the embedded catalog, inserting programs whose slug is
// not present yet. Existing rows are left untouched.
func SeedFormations(ctx context.Context, db *gorm.DB, log *zap.Logger) (int, error) {
	raw, err := seedFS.ReadFile("seed/formations.json")
	if err != nil {
		return 0, err
	}
	var items []models.Formation
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}
	created := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			f := items[i]
			var existing models.Formation
			err := tx.Where("slug = ?", f.Slug).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if f.Etat == "" {
				f.Etat = models.EtatActive
			}
			if err := tx.Create(&f).Error; err != nil {
				return fmt.Errorf("seed %s: %w", f.Slug, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info("catalog seeded", zap.Int("created", created), zap.Int("total", len(items)))
	return created, nil
}

// SeedAdmin creates the back-office account when it does not exist. An empty
// password skips seeding.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		log.Info("admin seed skipped", zap.Bool("password_set", password != ""))
		return nil
	}
	var u models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u = models.User{Email: email, Name: "Administrateur", Password: hash, Role: models.RoleAdmin}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("admin user created", zap.Uint("user_id", u.ID))
	return nil
}
