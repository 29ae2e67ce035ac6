package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diewo77/go-formations/i18n"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/validation"
	"go.uber.org/zap"
)

// Envelope is the success body shared by every JSON endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"success":false,"error":"INTERNAL_ERROR"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// OK writes a success envelope. msgCode is translated when not empty.
func OK(w http.ResponseWriter, r *http.Request, status int, data any, msgCode string) {
	env := Envelope{Success: true, Data: data}
	if msgCode != "" {
		env.Message = i18n.T(i18n.LangFrom(r.Context()), msgCode)
	}
	JSON(w, status, env)
}

func JSONError(w http.ResponseWriter, status int, code, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Message: msg, Details: details})
}

// Error maps err onto the error envelope: violations become 400 VALIDATION_ERROR,
// coded errors keep their status and anything else is logged and reported as a 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFrom(r.Context())
	if v, ok := validation.AsError(err); ok {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, "VALIDATION_ERROR"), i18n.Localize(lang, v))
		return
	}
	ae, ok := apperr.As(err)
	if !ok {
		ae = apperr.Processing(err)
	}
	if ae.Status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("code", ae.Code), zap.String("path", r.URL.Path), zap.Error(err))
	}
	JSONError(w, ae.Status, ae.Code, i18n.T(lang, ae.Code), nil)
}

// Decode reads a JSON body into dst. Malformed input yields apperr.ErrInvalidJSON.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.ErrInvalidJSON
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Wrap(apperr.ErrInvalidJSON, errors.New("empty body"))
		}
		return apperr.Wrap(apperr.ErrInvalidJSON, err)
	}
	return nil
}
