package middleware

import (
	"net/http"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/logger"
	"go.uber.org/zap"
)

// Recover turns a panic into a JSON 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered",
				zap.Any("panic", rec), zap.Stack("stack"), zap.String("path", r.URL.Path))
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
