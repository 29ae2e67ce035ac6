package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/catalog"
	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/pdf"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/diewo77/go-formations/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var ErrFormationExists = apperr.Conflict("FORMATION_EXISTS")

type FormationHandler struct {
	catalog  *catalog.Catalog
	renderer *pdf.Renderer
}

func NewFormationHandler(cat *catalog.Catalog, renderer *pdf.Renderer) *FormationHandler {
	return &FormationHandler{catalog: cat, renderer: renderer}
}

func (h *FormationHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := catalog.ParseFilter(r.URL.Query())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	items, err := h.catalog.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, items, "")
}

func (h *FormationHandler) get(r *http.Request) (models.Formation, error) {
	f, err := h.catalog.Get(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		return f, apperr.Wrap(devis.ErrFormationNotFound, err)
	}
	return f, err
}

func (h *FormationHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.get(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, f, "")
}

// Programme streams the program sheet as a PDF attachment.
func (h *FormationHandler) Programme(w http.ResponseWriter, r *http.Request) {
	f, err := h.get(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	body, err := h.renderer.RenderProgram(f, r.URL.Query().Get("template"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	writePDF(w, r, pdf.ProgramFilename(f.Slug), body)
}

func (h *FormationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f models.Formation
	if err := httpx.Decode(r, &f); err != nil {
		httpx.Error(w, r, err)
		return
	}
	f.Slug = strings.TrimSpace(f.Slug)
	if v := validation.Struct(f); !v.Empty() {
		httpx.Error(w, r, v.Err())
		return
	}
	if err := h.catalog.Create(r.Context(), &f); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = apperr.Wrap(ErrFormationExists, err)
		}
		httpx.Error(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("formation created", zap.String("slug", f.Slug))
	httpx.OK(w, r, http.StatusCreated, f, "formation_created")
}

// Update replaces the program named in the path; the body's slug is ignored.
func (h *FormationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var f models.Formation
	if err := httpx.Decode(r, &f); err != nil {
		httpx.Error(w, r, err)
		return
	}
	f.Slug = chi.URLParam(r, "slug")
	if v := validation.Struct(f); !v.Empty() {
		httpx.Error(w, r, v.Err())
		return
	}
	if err := h.catalog.Update(r.Context(), &f); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = apperr.Wrap(devis.ErrFormationNotFound, err)
		}
		httpx.Error(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("formation updated", zap.String("slug", f.Slug))
	httpx.OK(w, r, http.StatusOK, f, "formation_updated")
}

func (h *FormationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.catalog.Delete(r.Context(), slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = apperr.Wrap(devis.ErrFormationNotFound, err)
		}
		httpx.Error(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("formation deleted", zap.String("slug", slug))
	httpx.OK(w, r, http.StatusOK, map[string]string{"slug": slug}, "formation_deleted")
}

func writePDF(w http.ResponseWriter, r *http.Request, filename string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.FromContext(r.Context()).Warn("pdf write interrupted", zap.String("filename", filename), zap.Error(err))
	}
}
