package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		query               string
		page, limit, offset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=-1&limit=1000", 1, 20, 0},
		{"?page=abc", 1, 20, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/devis"+tc.query, nil)
		page, limit, offset := pagination(r)
		if page != tc.page || limit != tc.limit || offset != tc.offset {
			t.Errorf("%q: got %d/%d/%d", tc.query, page, limit, offset)
		}
	}
}

func TestNewPageNeverNil(t *testing.T) {
	p := newPage[string](nil, 0, 1, 20)
	if p.Items == nil {
		t.Fatalf("items must serialise as []")
	}
}

func TestContactReference(t *testing.T) {
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	ref := contactReference(now)
	if !regexp.MustCompile(`^CT-20250309-[0-9A-F]{8}$`).MatchString(ref) {
		t.Fatalf("unexpected reference %q", ref)
	}
	if contactReference(now) == ref {
		t.Fatalf("references must differ")
	}
}

func TestWritePDFHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	writePDF(rr, httptest.NewRequest(http.MethodGet, "/", nil), "DEV-20250115-AB12_20250115_slug_Zoé Durand.pdf", []byte("%PDF-1.3"))
	if rr.Header().Get("Content-Type") != "application/pdf" || rr.Header().Get("Content-Length") != "8" {
		t.Fatalf("unexpected headers %v", rr.Header())
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "filename*=utf-8''") {
		t.Fatalf("non-ascii filename must use the extended form: %q", cd)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}, "test").Ready(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("ready: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}, "test").Ready(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "DB_UNAVAILABLE") {
		t.Fatalf("degraded: %d %s", rr.Code, rr.Body.String())
	}
}
