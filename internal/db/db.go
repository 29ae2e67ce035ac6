// Package db opens the gorm connection, migrates the schema and seeds
// reference data.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/diewo77/go-formations/internal/config"
	"github.com/diewo77/go-formations/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for cfg.Driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Connect opens the database, retrying with exponential backoff so the
// server can start before Postgres accepts connections.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, level),
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)),
		ctx,
	)

	var gdb *gorm.DB
	attempt := 0
	op := func() error {
		attempt++
		db, err := gorm.Open(dialector, gcfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		gdb = db
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("database not ready",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.MaskedDSN(), err)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.Int("attempts", attempt))
	return gdb, nil
}

// Migrate applies the gorm schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
