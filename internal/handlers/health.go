package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/logger"
	"go.uber.org/zap"
)

var ErrDBUnavailable = apperr.New(http.StatusServiceUnavailable, "DB_UNAVAILABLE")

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Live reports that the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, r, http.StatusOK, map[string]string{"status": "ok", "version": h.version}, "")
}

// Ready also checks the database.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed", zap.Error(err))
		httpx.Error(w, r, apperr.Wrap(ErrDBUnavailable, err))
		return
	}
	httpx.OK(w, r, http.StatusOK, map[string]string{"status": "ok", "database": "ok", "version": h.version}, "")
}
