// Package server assembles the chi router and its middleware chain.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/handlers"
	"github.com/diewo77/go-formations/internal/logger"
	mw "github.com/diewo77/go-formations/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App is the root http.Handler.
type App struct {
	router  chi.Router
	limiter *mw.RateLimiter
	log     *zap.Logger
}

// New builds the router for rc.
func New(rc *RouterConfig, log *zap.Logger) *App {
	cfg := rc.Config
	app := &App{router: chi.NewRouter(), log: log}
	if cfg.Features.RateLimit {
		app.limiter = mw.NewRateLimiter(cfg.Limits.Requests, cfg.Limits.Window)
	}

	r := app.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(mw.Recover)
	r.Use(mw.Prefs)
	r.Use(mw.CORS(cfg.Server.CORSAllowOrigin))
	r.Use(rc.Signer.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, r, apperr.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, r, apperr.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"))
	})

	health := rc.HealthHandler
	r.Get("/health", health.Live)
	r.Get("/healthz", health.Ready)

	limited := app.limit
	admin := rc.Signer.RequireAuth

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/login", rc.AuthHandler.Login)
			r.With(admin).Get("/me", rc.AuthHandler.Me)
		})

		fh := rc.FormationHandler
		r.Route("/formations", func(r chi.Router) {
			r.Get("/", fh.List)
			r.Get("/{slug}", fh.Get)
			r.Get("/{slug}/programme.pdf", fh.Programme)
			r.With(admin).Post("/", fh.Create)
			r.With(admin).Put("/{slug}", fh.Update)
			r.With(admin).Delete("/{slug}", fh.Delete)
		})

		dh := rc.DevisHandler
		r.Route("/devis", func(r chi.Router) {
			r.With(limited).Post("/", dh.Create)
			r.Post("/calculate", dh.Calculate)
			r.Post("/pdf", dh.RenderPDF)
			r.Get("/template", dh.Template)
			r.Get("/tarifs", dh.Tarifs)
			r.Get("/history", dh.History)
			r.With(admin).Get("/", dh.List)
			r.Get("/{reference}", dh.Get)
			r.Get("/{reference}/pdf", dh.PDF)
		})

		ch := rc.ContactHandler
		r.With(limited).Post("/contact", ch.Create)
		r.With(admin).Get("/contact", ch.List)

		if cfg.Features.Uploads {
			r.With(admin).Post("/upload", rc.UploadHandler.Create)
		}
	})

	if cfg.Features.Uploads {
		files := http.StripPrefix(handlers.UploadsPath, http.FileServer(http.Dir(cfg.Uploads.Dir)))
		r.Handle(handlers.UploadsPath+"*", files)
	}
	return app
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// limit applies the rate limiter when the feature is enabled.
func (a *App) limit(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return a.limiter.Handler(next)
}

// RunJanitor drops expired rate-limit windows until ctx is done.
func (a *App) RunJanitor(ctx context.Context, every time.Duration) error {
	if a.limiter == nil {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limit windows swept", zap.Int("count", n))
			}
		}
	}
}
