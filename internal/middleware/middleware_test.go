package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-formations/i18n"
)

func langEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(i18n.LangFrom(r.Context())))
	})
}

func TestPrefsLanguagePrecedence(t *testing.T) {
	h := Prefs(langEcho())
	cases := []struct {
		name   string
		url    string
		cookie string
		accept string
		want   string
	}{
		{"default", "/", "", "", "fr"},
		{"header", "/", "", "en-US,en;q=0.9", "en"},
		{"cookie over header", "/", "fr", "en-US", "fr"},
		{"query over cookie", "/?lang=en", "fr", "", "en"},
		{"unsupported query ignored", "/?lang=de", "", "en", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if got := rr.Body.String(); got != tc.want {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}

func TestPrefsPersistsQueryLanguage(t *testing.T) {
	rr := httptest.NewRecorder()
	Prefs(langEcho()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "lang" || cookies[0].Value != "en" {
		t.Fatalf("expected lang cookie, got %+v", cookies)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two hits must pass")
	}
	if l.Allow("a") {
		t.Fatalf("third hit must be rejected")
	}
	if !l.Allow("b") {
		t.Fatalf("keys are independent")
	}
	if l.Allow("") {
		t.Fatalf("empty key must be rejected")
	}
	now = now.Add(time.Minute)
	if !l.Allow("a") {
		t.Fatalf("new window must reset the counter")
	}
	now = now.Add(2 * time.Minute)
	if n := l.Sweep(); n != 2 {
		t.Fatalf("swept %d entries, want 2", n)
	}
	if len(l.items) != 0 {
		t.Fatalf("sweep left %d entries", len(l.items))
	}
}

func TestRateLimiterHandler(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}
	if rr := send(); rr.Code != http.StatusNoContent {
		t.Fatalf("first request: %d", rr.Code)
	}
	rr := send()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rr.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error != "RATE_LIMITED" {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After at window start: %q", rr.Header().Get("Retry-After"))
	}

	now = now.Add(45*time.Second + 500*time.Millisecond)
	if rr := send(); rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "15" {
		t.Fatalf("expected 429 with 15s left, got %d %q", rr.Code, rr.Header().Get("Retry-After"))
	}
	now = now.Add(15 * time.Second)
	if rr := send(); rr.Code != http.StatusNoContent {
		t.Fatalf("new window must admit the client: %d", rr.Code)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := map[time.Duration]int{0: 1, -time.Second: 1, 300 * time.Millisecond: 1, time.Second: 1, 1500 * time.Millisecond: 2, time.Minute: 60}
	for d, want := range cases {
		if got := retryAfterSeconds(d); got != want {
			t.Errorf("retryAfterSeconds(%v) = %d, want %d", d, got, want)
		}
	}
}

func TestRecoverWritesJSON500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS("https://app.example.com")(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/devis", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("missing allow origin")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/formations", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin must not be allowed")
	}
}
