package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/catalog"
	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/history"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/pdf"
	"github.com/diewo77/go-formations/internal/pricing"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SessionHeader carries a client-chosen history session id.
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the server-issued history session id.
	SessionCookie = "devis_session"
	// TokenHeader carries the access token of a stored quote; ?token= works too.
	TokenHeader = "X-Devis-Token"
)

type DevisHandler struct {
	svc      *devis.Service
	catalog  *catalog.Catalog
	renderer *pdf.Renderer
	history  *history.Log
	admin    func(*http.Request) bool
}

// NewDevisHandler builds the quote endpoints. admin reports whether a request
// may read any stored quote without its access token; nil means nobody may.
func NewDevisHandler(svc *devis.Service, cat *catalog.Catalog, renderer *pdf.Renderer, hist *history.Log, admin func(*http.Request) bool) *DevisHandler {
	return &DevisHandler{svc: svc, catalog: cat, renderer: renderer, history: hist, admin: admin}
}

// session returns the caller's history id, header first then cookie.
func session(r *http.Request) (string, bool) {
	if s := strings.TrimSpace(r.Header.Get(SessionHeader)); history.ValidSession(s) {
		return s, true
	}
	if c, err := r.Cookie(SessionCookie); err == nil && history.ValidSession(c.Value) {
		return c.Value, true
	}
	return "", false
}

// ensureSession returns the caller's history id, issuing a cookie when the
// request has none. It must run before the response header is written.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if s, ok := session(r); ok {
		return s
	}
	s := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s,
		Path:     "/api/devis",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func accessToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// stored loads the quote named in the path for an admin or a token holder.
func (h *DevisHandler) stored(r *http.Request) (devis.Quote, error) {
	ref := chi.URLParam(r, "reference")
	if h.admin != nil && h.admin(r) {
		return h.svc.Get(r.Context(), ref)
	}
	return h.svc.Open(r.Context(), ref, accessToken(r))
}

// Create assembles and stores a quote.
func (h *DevisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req devis.Request
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("devis created",
		zap.String("reference", q.Reference),
		zap.String("formation", q.Formation.Slug),
		zap.Float64("total_ttc", q.Financier.TotalTTC),
	)
	httpx.OK(w, r, http.StatusCreated, q, "devis_created")
}

type calculateRequest struct {
	FormationSlug     string   `json:"formationSlug"`
	Mode              string   `json:"mode"`
	Participants      *float64 `json:"participants"`
	Heures            *float64 `json:"heures"`
	TVA               *float64 `json:"tva"`
	CoutCertification *float64 `json:"coutCertification"`
}

type calculateParams struct {
	FormationSlug     string        `json:"formationSlug,omitempty"`
	Mode              pricing.Mode  `json:"mode"`
	Participants      int           `json:"participants"`
	Heures            int           `json:"heures"`
	TVA               float64       `json:"tva"`
	CoutCertification float64       `json:"coutCertification"`
	TauxHoraire       pricing.Rates `json:"tauxHoraire"`
}

type calculateResponse struct {
	Parametres calculateParams `json:"parametres"`
	Resultats  pricing.Result  `json:"resultats"`
	Affichage  pricing.Display `json:"affichage"`
}

// Calculate prices a request without a client or persistence. Rates come
// from the given program, or from the default grid when no slug is sent.
func (h *DevisHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if strings.TrimSpace(req.Mode) == "" || req.Participants == nil || req.Heures == nil {
		httpx.Error(w, r, apperr.ErrMissingParams)
		return
	}
	tva := pricing.DefaultTaxRate
	if req.TVA != nil {
		tva = *req.TVA
	}
	fee := 0.0
	if req.CoutCertification != nil {
		fee = *req.CoutCertification
	}
	in, err := pricing.NewInput(req.Mode, *req.Participants, *req.Heures, tva, fee)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	rates := h.svc.Assembler.Grid()
	slug := strings.TrimSpace(req.FormationSlug)
	if slug != "" {
		f, err := h.catalog.Get(r.Context(), slug)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				err = apperr.Wrap(devis.ErrFormationNotFound, err)
			}
			httpx.Error(w, r, err)
			return
		}
		rates = f.Rates(rates)
	}
	res, err := pricing.Compute(in, rates)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, calculateResponse{
		Parametres: calculateParams{
			FormationSlug:     slug,
			Mode:              in.Mode,
			Participants:      in.Participants,
			Heures:            in.Hours,
			TVA:               in.TaxRate,
			CoutCertification: in.CertificationFee,
			TauxHoraire:       rates,
		},
		Resultats: res,
		Affichage: res.Display(),
	}, "")
}

func (h *DevisHandler) Template(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, r, http.StatusOK, h.svc.Assembler.Template(), "")
}

func (h *DevisHandler) Tarifs(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context(), catalog.Filter{})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, devis.BuildTarifs(h.svc.Assembler.Grid(), items), "")
}

// History lists the caller's session; a caller without a session has none.
func (h *DevisHandler) History(w http.ResponseWriter, r *http.Request) {
	sid, ok := session(r)
	if !ok {
		httpx.OK(w, r, http.StatusOK, []history.Entry{}, "")
		return
	}
	entries, err := h.history.List(r.Context(), sid)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, entries, "")
}

func (h *DevisHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.stored(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, q, "")
}

// PDF renders a stored quote.
func (h *DevisHandler) PDF(w http.ResponseWriter, r *http.Request) {
	q, err := h.stored(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	h.render(w, r, q, r.URL.Query().Get("template"))
}

type renderRequest struct {
	devis.Request
	Template string `json:"template"`
}

// RenderPDF assembles the posted quote and renders it without storing the quote.
func (h *DevisHandler) RenderPDF(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.svc.Assembler.Build(r.Context(), req.Request)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	tpl := req.Template
	if qt := r.URL.Query().Get("template"); qt != "" {
		tpl = qt
	}
	h.render(w, r, q, tpl)
}

// render writes the PDF of q and records it in the session history once the
// document exists. A history failure does not fail the download.
func (h *DevisHandler) render(w http.ResponseWriter, r *http.Request, q devis.Quote, template string) {
	body, err := h.renderer.RenderQuote(q, template)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	filename := pdf.Filename(q)
	if err := h.history.Record(r.Context(), ensureSession(w, r), history.EntryFor(q, filename)); err != nil {
		logger.FromContext(r.Context()).Warn("history not recorded", zap.String("reference", q.Reference), zap.Error(err))
	}
	writePDF(w, r, filename, body)
}

// List is the admin listing of stored quotes.
func (h *DevisHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	items, total, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, newPage[models.DevisRecord](items, total, page, limit), "")
}
