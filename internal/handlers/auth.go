package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-formations/auth"
	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/diewo77/go-formations/validation"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = apperr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS")

type AuthHandler struct {
	users  store.Users
	signer *auth.Signer
}

func NewAuthHandler(users store.Users, signer *auth.Signer) *AuthHandler {
	return &AuthHandler{users: users, signer: signer}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		httpx.Error(w, r, v.Err())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		logger.FromContext(r.Context()).Warn("login rejected", zap.String("email", logger.MaskEmail(req.Email)))
		httpx.Error(w, r, ErrInvalidCredentials)
		return
	}

	token, exp := h.signer.Issue(user.ID)
	logger.FromContext(r.Context()).Info("login", zap.Uint("user_id", user.ID))
	httpx.OK(w, r, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user}, "")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.ErrUnauthorized)
		return
	}
	user, err := h.users.GetByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, r, apperr.ErrUnauthorized)
			return
		}
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, user, "")
}
