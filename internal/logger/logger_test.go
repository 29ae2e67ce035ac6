package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	orig := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(orig)

	FromContext(context.Background()).Info("hello")
	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
}

func TestMiddlewareLogsStatusAndRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	var inner *zap.Logger
	h := middleware.RequestID(Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/formations/inconnue", nil)
	req.Header.Set("Authorization", "Bearer abcdefgh12345678")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if inner == nil {
		t.Fatalf("handler should see a request logger")
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn for 404, got %s", e.Level)
	}
	fields := e.ContextMap()
	if fields["status"] != int64(http.StatusNotFound) {
		t.Fatalf("expected status 404, got %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Fatalf("expected request id")
	}
	if fields["authorization"] != "Bearer ****5678" {
		t.Fatalf("token must be masked, got %v", fields["authorization"])
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.fr": "a***@example.fr",
		"x":                "****",
		"":                 "",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q want %q", in, got, want)
		}
	}
}
