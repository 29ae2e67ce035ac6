package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const userIDCtxKey = ctxKey("userID")

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: expired token")
)

// UserVerifier is an optional callback to validate that a token's user still exists/is allowed.
type UserVerifier func(ctx context.Context, uid uint) bool

// Signer issues and checks bearer tokens of the form "uid.exp.sig", where sig
// is the HMAC-SHA256 of "uid.exp" under the server secret.
type Signer struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	verifier UserVerifier
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SetUserVerifier configures the check run by RequireAuth.
func (s *Signer) SetUserVerifier(v UserVerifier) { s.verifier = v }

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Issue returns a token for userID and its expiry.
func (s *Signer) Issue(userID uint) (string, time.Time) {
	exp := s.now().Add(s.ttl).Truncate(time.Second)
	payload := strconv.FormatUint(uint64(userID), 10) + "." + strconv.FormatInt(exp.Unix(), 10)
	return payload + "." + s.sign(payload), exp
}

// Parse validates token and returns the user id.
func (s *Signer) Parse(token string) (uint, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(payload))) {
		return 0, ErrInvalidToken
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if !s.now().Before(time.Unix(exp, 0)) {
		return 0, ErrExpiredToken
	}
	id64, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || id64 == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id64), nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches user id to request context if a valid token is present.
func (s *Signer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := BearerToken(r); tok != "" {
			if uid, err := s.Parse(tok); err == nil {
				r = r.WithContext(WithUserID(r.Context(), uid))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authorized reports whether r carries a valid token for a user the verifier
// accepts. Middleware must have run first.
func (s *Signer) Authorized(r *http.Request) bool {
	uid, ok := UserIDFromContext(r.Context())
	return ok && (s.verifier == nil || s.verifier(r.Context(), uid))
}

// RequireAuth returns 401 UNAUTHORIZED unless the request is Authorized.
func (s *Signer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Authorized(r) {
			httpx.Error(w, r, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
