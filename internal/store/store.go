// Package store holds the gorm-backed repositories. Business packages depend
// on the interfaces declared here, never on *gorm.DB directly.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

var mapping = map[error]error{
	gorm.ErrRecordNotFound: ErrNotFound,
	gorm.ErrDuplicatedKey:  ErrDuplicate,
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	for k, v := range mapping {
		if errors.Is(err, k) {
			return fmt.Errorf("%w: %v", v, err)
		}
	}
	// drivers without error translation still report the constraint in text
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

type Formations interface {
	List(ctx context.Context) ([]models.Formation, error)
	GetBySlug(ctx context.Context, slug string) (models.Formation, error)
	Create(ctx context.Context, f *models.Formation) error
	Update(ctx context.Context, f *models.Formation) error
	Delete(ctx context.Context, slug string) error
}

type Contacts interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	MarkNotified(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error)
}

type Devis interface {
	Create(ctx context.Context, d *models.DevisRecord) error
	GetByReference(ctx context.Context, ref string) (models.DevisRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.DevisRecord, int64, error)
}

// KV stores small opaque documents by key. Put overwrites.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type Users interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Uploads interface {
	Create(ctx context.Context, u *models.Upload) error
}

// Store groups the repositories sharing one connection.
type Store struct {
	DB         *gorm.DB
	Formations Formations
	Contacts   Contacts
	Devis      Devis
	KV         KV
	Users      Users
	Uploads    Uploads
}

func New(db *gorm.DB) *Store {
	return &Store{
		DB:         db,
		Formations: &formationRepo{db: db},
		Contacts:   &contactRepo{db: db},
		Devis:      &devisRepo{db: db},
		KV:         &kvRepo{db: db},
		Users:      &userRepo{db: db},
		Uploads:    &uploadRepo{db: db},
	}
}

// Ping runs a trivial query against the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.WithContext(ctx).Exec("SELECT 1").Error
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
