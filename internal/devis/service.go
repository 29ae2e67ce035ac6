package devis

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/google/uuid"
)

var (
	ErrDevisNotFound = apperr.NotFound("DEVIS_NOT_FOUND")
	ErrDevisExists   = apperr.Conflict("DEVIS_EXISTS")
)

// maxReferenceAttempts bounds regeneration when a random reference is taken.
const maxReferenceAttempts = 5

// Service assembles quotes and keeps them in the devis table.
type Service struct {
	Assembler *Assembler
	repo      store.Devis
	token     func() string
}

func NewService(asm *Assembler, repo store.Devis) *Service {
	return &Service{Assembler: asm, repo: repo, token: newAccessToken}
}

// Stored is a freshly stored quote with the token its owner needs to read it back.
type Stored struct {
	Quote
	AccessToken string `json:"accessToken"`
}

func newAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create builds and stores a quote. A generated reference that collides with a
// stored one is regenerated; a caller-supplied one yields ErrDevisExists.
func (s *Service) Create(ctx context.Context, req Request) (Stored, error) {
	q, err := s.Assembler.Build(ctx, req)
	if err != nil {
		return Stored{}, err
	}
	token := s.token()
	callerRef := strings.TrimSpace(req.Reference) != ""
	for attempt := 1; ; attempt++ {
		err = s.save(ctx, q, token)
		if err == nil {
			return Stored{Quote: q, AccessToken: token}, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return Stored{}, apperr.Processing(err)
		}
		if callerRef {
			return Stored{}, apperr.Wrap(ErrDevisExists, err)
		}
		if attempt >= maxReferenceAttempts {
			return Stored{}, apperr.Processing(fmt.Errorf("no free reference after %d attempts: %w", attempt, err))
		}
		q.Reference = s.Assembler.NewReference(q.DateEmission)
	}
}

func (s *Service) save(ctx context.Context, q Quote, token string) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	rec := models.DevisRecord{
		Reference:     q.Reference,
		FormationSlug: q.Formation.Slug,
		ClientNom:     q.Client.Nom,
		ClientEmail:   q.Client.Email,
		DateEmission:  q.DateEmission.Time,
		TotalTTC:      q.Financier.TotalTTC,
		AccessToken:   token,
		Payload:       string(payload),
	}
	return s.repo.Create(ctx, &rec)
}

// Get loads a stored quote by reference without checking its access token.
func (s *Service) Get(ctx context.Context, ref string) (Quote, error) {
	rec, err := s.record(ctx, ref)
	if err != nil {
		return Quote{}, err
	}
	return decode(rec)
}

// Open loads a stored quote for a caller holding its access token. A wrong
// token is reported as ErrDevisNotFound.
func (s *Service) Open(ctx context.Context, ref, token string) (Quote, error) {
	rec, err := s.record(ctx, ref)
	if err != nil {
		return Quote{}, err
	}
	if token == "" || rec.AccessToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(rec.AccessToken)) != 1 {
		return Quote{}, ErrDevisNotFound
	}
	return decode(rec)
}

func (s *Service) record(ctx context.Context, ref string) (models.DevisRecord, error) {
	rec, err := s.repo.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(ref)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return rec, apperr.Wrap(ErrDevisNotFound, err)
		}
		return rec, apperr.Processing(err)
	}
	return rec, nil
}

func decode(rec models.DevisRecord) (Quote, error) {
	var q Quote
	if err := json.Unmarshal([]byte(rec.Payload), &q); err != nil {
		return Quote{}, apperr.Processing(fmt.Errorf("decode quote %s: %w", rec.Reference, err))
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.DevisRecord, int64, error) {
	return s.repo.List(ctx, limit, offset)
}
