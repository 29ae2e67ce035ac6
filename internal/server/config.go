package server

import (
	"context"

	"github.com/diewo77/go-formations/auth"
	"github.com/diewo77/go-formations/internal/catalog"
	"github.com/diewo77/go-formations/internal/config"
	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/handlers"
	"github.com/diewo77/go-formations/internal/history"
	"github.com/diewo77/go-formations/internal/notify"
	"github.com/diewo77/go-formations/internal/pdf"
	"github.com/diewo77/go-formations/internal/pricing"
	"github.com/diewo77/go-formations/internal/store"
)

// RouterConfig holds the configured services and handlers of the API.
type RouterConfig struct {
	Config *config.Config
	Store  *store.Store
	Signer *auth.Signer

	Catalog  *catalog.Catalog
	Devis    *devis.Service
	Renderer *pdf.Renderer
	History  *history.Log

	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	FormationHandler *handlers.FormationHandler
	DevisHandler     *handlers.DevisHandler
	ContactHandler   *handlers.ContactHandler
	UploadHandler    *handlers.UploadHandler
}

// NewRouterConfig wires every service on top of st.
func NewRouterConfig(cfg *config.Config, st *store.Store, version string) *RouterConfig {
	signer := auth.NewSigner(cfg.App.SessionSecret, cfg.App.TokenTTL)
	// only admin accounts may use protected routes
	signer.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		u, err := st.Users.GetByID(ctx, uid)
		return err == nil && u.IsAdmin()
	})

	grid := pricing.Rates{Individual: cfg.Pricing.RateIndividual, Group: cfg.Pricing.RateGroup}
	cat := catalog.New(st.Formations, cfg.App.CatalogTTL)
	svc := devis.NewService(devis.NewAssembler(cat, grid), st.Devis)
	renderer := pdf.NewRenderer(pdf.Issuer{
		Name:    cfg.Issuer.Name,
		Address: cfg.Issuer.Address,
		Siret:   cfg.Issuer.Siret,
		NDA:     cfg.Issuer.NDA,
		Email:   cfg.Issuer.Email,
		Phone:   cfg.Issuer.Phone,
		Website: cfg.Issuer.Website,
	}, pdf.Template(cfg.Issuer.PDFTemplate))
	hist := history.New(st.KV)

	return &RouterConfig{
		Config:   cfg,
		Store:    st,
		Signer:   signer,
		Catalog:  cat,
		Devis:    svc,
		Renderer: renderer,
		History:  hist,

		HealthHandler:    handlers.NewHealthHandler(st, version),
		AuthHandler:      handlers.NewAuthHandler(st.Users, signer),
		FormationHandler: handlers.NewFormationHandler(cat, renderer),
		DevisHandler:     handlers.NewDevisHandler(svc, cat, renderer, hist, signer.Authorized),
		ContactHandler:   handlers.NewContactHandler(st.Contacts, notify.New(cfg.Features.Email, cfg.SMTP)),
		UploadHandler:    handlers.NewUploadHandler(st.Uploads, cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB),
	}
}
