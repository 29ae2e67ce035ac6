package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/notify"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/diewo77/go-formations/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContactHandler struct {
	repo     store.Contacts
	notifier notify.Notifier
	now      func() time.Time
}

func NewContactHandler(repo store.Contacts, notifier notify.Notifier) *ContactHandler {
	return &ContactHandler{repo: repo, notifier: notifier, now: time.Now}
}

type contactRequest struct {
	Nom           string `json:"nom" validate:"required,max=120"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Telephone     string `json:"telephone" validate:"omitempty,max=30"`
	Entreprise    string `json:"entreprise" validate:"omitempty,max=255"`
	Sujet         string `json:"sujet" validate:"required,oneof=information devis inscription financement autre"`
	FormationSlug string `json:"formationSlug" validate:"omitempty,max=120"`
	Message       string `json:"message" validate:"required,min=10,max=5000"`
	Consentement  bool   `json:"consentement" validate:"required"`
}

// contactReference returns CT-YYYYMMDD- followed by 8 hex characters of a UUID.
func contactReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CT-" + now.Format("20060102") + "-" + strings.ToUpper(id[:8])
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	req.Nom = strings.TrimSpace(req.Nom)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if v := validation.Struct(req); !v.Empty() {
		httpx.Error(w, r, v.Err())
		return
	}

	m := models.ContactMessage{
		Reference:     contactReference(h.now()),
		Nom:           req.Nom,
		Email:         req.Email,
		Telephone:     strings.TrimSpace(req.Telephone),
		Entreprise:    strings.TrimSpace(req.Entreprise),
		Sujet:         req.Sujet,
		FormationSlug: strings.TrimSpace(req.FormationSlug),
		Message:       req.Message,
		Consentement:  req.Consentement,
	}
	if err := h.repo.Create(r.Context(), &m); err != nil {
		httpx.Error(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	if err := h.notifier.NotifyContact(r.Context(), m); err != nil {
		// the message is stored; an operator can still read it from the admin list
		log.Warn("contact notification failed", zap.String("reference", m.Reference), zap.Error(err))
	} else if err := h.repo.MarkNotified(r.Context(), m.ID); err != nil {
		log.Warn("contact not marked notified", zap.String("reference", m.Reference), zap.Error(err))
	}
	httpx.OK(w, r, http.StatusCreated, map[string]string{"reference": m.Reference}, "contact_received")
}

// List is the admin listing of contact messages, newest first.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	items, total, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, newPage[models.ContactMessage](items, total, page, limit), "")
}
