package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-formations/i18n"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/validation"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestOKEnvelope(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	OK(w, r, http.StatusCreated, map[string]string{"reference": "DEV-1"}, "devis_created")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Message string            `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["reference"] != "DEV-1" || body.Message != "Devis créé" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrorValidationLocalised(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r = r.WithContext(i18n.WithLang(r.Context(), "en"))
	w := httptest.NewRecorder()
	err := fmt.Errorf("build: %w", validation.Violations{"heures": "out_of_range"}.Err())
	Error(w, r, err)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Success || body.Error != "VALIDATION_ERROR" {
		t.Fatalf("unexpected body %+v", body)
	}
	details, _ := body.Details.(map[string]any)
	if details["heures"] != "Value out of range" {
		t.Fatalf("expected localised detail, got %v", body.Details)
	}
}

func TestErrorCodedAndUnknown(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	Error(w, r, apperr.NotFound("FORMATION_NOT_FOUND"))
	if w.Code != http.StatusNotFound || decodeError(t, w).Error != "FORMATION_NOT_FOUND" {
		t.Fatalf("expected 404 FORMATION_NOT_FOUND got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	Error(w, r, errors.New("boom"))
	body := decodeError(t, w)
	if w.Code != http.StatusInternalServerError || body.Error != "INTERNAL_ERROR" {
		t.Fatalf("expected 500 INTERNAL_ERROR got %d %+v", w.Code, body)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("internal cause must not leak")
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Mode string `json:"mode"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode":"groupe"}`))
	if err := Decode(r, &dst); err != nil || dst.Mode != "groupe" {
		t.Fatalf("decode failed: %v %+v", err, dst)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode":`))
	if err := Decode(r, &dst); !errors.Is(err, apperr.ErrInvalidJSON) {
		t.Fatalf("expected invalid json, got %v", err)
	}
}
