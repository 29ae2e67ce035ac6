// Package history keeps the rolling list of generated quote documents per
// client session. It is a convenience, not a system of record: concurrent
// writers to the same session may overwrite each other.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/pricing"
	"github.com/diewo77/go-formations/internal/store"
)

// MaxEntries is how many entries a session keeps.
const MaxEntries = 20

const keyPrefix = "devis_history:"

// ErrInvalidSession is returned by Record for an unusable session id.
var ErrInvalidSession = errors.New("history: invalid session id")

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Entry struct {
	ID             int64  `json:"id"`
	Reference      string `json:"reference"`
	DateEmission   string `json:"dateEmission"`
	FormationTitre string `json:"formationTitre"`
	ClientNom      string `json:"clientNom"`
	TotalFormate   string `json:"totalFormate"`
	Filename       string `json:"filename"`
}

// EntryFor summarises q for the history list.
func EntryFor(q devis.Quote, filename string) Entry {
	return Entry{
		Reference:      q.Reference,
		DateEmission:   q.DateEmission.String(),
		FormationTitre: q.Formation.Titre,
		ClientNom:      q.Client.Nom,
		TotalFormate:   pricing.FormatEUR(q.Financier.TotalTTC),
		Filename:       filename,
	}
}

type Log struct {
	kv  store.KV
	max int
	now func() time.Time
	mu  sync.Mutex
}

func New(kv store.KV) *Log {
	return &Log{kv: kv, max: MaxEntries, now: time.Now}
}

// ValidSession reports whether id can name a session.
func ValidSession(id string) bool { return sessionPattern.MatchString(id) }

// Key returns the storage key of session.
func Key(session string) string { return keyPrefix + session }

// List returns the session's entries, most recent first. An invalid session
// has no entries.
func (l *Log) List(ctx context.Context, session string) ([]Entry, error) {
	if !ValidSession(session) {
		return []Entry{}, nil
	}
	raw, err := l.kv.Get(ctx, Key(session))
	if errors.Is(err, store.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Record prepends e and keeps the most recent MaxEntries. A zero ID is set
// to the current time in milliseconds.
func (l *Log) Record(ctx context.Context, session string, e Entry) error {
	if !ValidSession(session) {
		return ErrInvalidSession
	}
	if e.ID == 0 {
		e.ID = l.now().UnixMilli()
	}
	// serialises writers within this process only
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.List(ctx, session)
	if err != nil {
		return err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > l.max {
		entries = entries[:l.max]
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := l.kv.Put(ctx, Key(session), raw); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
