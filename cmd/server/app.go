package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/go-formations/internal/config"
	"github.com/diewo77/go-formations/internal/db"
	"github.com/diewo77/go-formations/internal/server"
	"github.com/diewo77/go-formations/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type runMode int

const (
	modeServe runMode = iota
	modeMigrate
	modeSeed
)

// prepare migrates the schema and, when enabled, seeds reference data.
func prepare(ctx context.Context, cfg *config.Config, gdb *gorm.DB, log *zap.Logger, seed bool) error {
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	log.Info("migrations completed")
	if !seed {
		return nil
	}
	if _, err := db.SeedFormations(ctx, gdb, log); err != nil {
		return fmt.Errorf("seed formations: %w", err)
	}
	if err := db.SeedAdmin(ctx, gdb, cfg.Admin.Email, cfg.Admin.Password, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// NewApp builds the HTTP application on top of an open database.
func NewApp(cfg *config.Config, gdb *gorm.DB, log *zap.Logger) *server.App {
	rc := server.NewRouterConfig(cfg, store.New(gdb), version)
	return server.New(rc, log)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, mode runMode) error {
	gdb, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	switch mode {
	case modeMigrate:
		return prepare(ctx, cfg, gdb, log, false)
	case modeSeed:
		return prepare(ctx, cfg, gdb, log, true)
	}
	if err := prepare(ctx, cfg, gdb, log, cfg.App.Seed); err != nil {
		return err
	}

	app := NewApp(cfg, gdb, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("version", version),
			zap.Bool("uploads", cfg.Features.Uploads),
			zap.Bool("email", cfg.Features.Email),
			zap.Bool("rate_limit", cfg.Features.RateLimit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.RunJanitor(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	})
	return g.Wait()
}
