package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diewo77/go-formations/auth"
	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/diewo77/go-formations/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrFileTooLarge    = apperr.New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE")
	ErrUnsupportedFile = apperr.BadRequest("UNSUPPORTED_FILE")
)

var allowedExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// UploadsPath is the URL prefix the stored files are served under.
const UploadsPath = "/uploads/"

type UploadHandler struct {
	repo     store.Uploads
	dir      string
	maxBytes int64
}

func NewUploadHandler(repo store.Uploads, dir string, maxMB int) *UploadHandler {
	return &UploadHandler{repo: repo, dir: dir, maxBytes: int64(maxMB) << 20}
}

type uploadResponse struct {
	models.Upload
	URL string `json:"url"`
}

func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpx.Error(w, r, apperr.Wrap(ErrFileTooLarge, err))
			return
		}
		httpx.Error(w, r, validation.Violations{"file": "required"}.Err())
		return
	}
	defer file.Close()
	if header.Size > h.maxBytes {
		httpx.Error(w, r, ErrFileTooLarge)
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExt[ext]
	if !ok {
		httpx.Error(w, r, ErrUnsupportedFile)
		return
	}

	stored := uuid.NewString() + ext
	size, err := h.save(stored, file)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	rec := models.Upload{
		StoredName:   stored,
		OriginalName: filepath.Base(header.Filename),
		ContentType:  contentType,
		Size:         size,
		UserID:       uid,
	}
	if err := h.repo.Create(r.Context(), &rec); err != nil {
		_ = os.Remove(filepath.Join(h.dir, stored))
		httpx.Error(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("file uploaded", zap.String("stored", stored), zap.Int64("size", size))
	httpx.OK(w, r, http.StatusCreated, uploadResponse{Upload: rec, URL: UploadsPath + stored}, "file_uploaded")
}

func (h *UploadHandler) save(name string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(h.dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	return n, nil
}
