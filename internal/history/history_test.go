package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestLog(t *testing.T) *Log {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(store.New(db).KV)
}

func TestRecordCapsAtTwentyMostRecentFirst(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		if err := l.Record(ctx, "s1", Entry{ID: int64(i), Reference: fmt.Sprintf("DEV-%02d", i)}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	got, err := l.List(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(got))
	}
	for i, e := range got {
		want := int64(25 - i)
		if e.ID != want {
			t.Fatalf("position %d: expected id %d got %d", i, want, e.ID)
		}
	}
	for _, e := range got {
		if e.ID <= 5 {
			t.Fatalf("entry %d should have been evicted", e.ID)
		}
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	_ = l.Record(ctx, "alice", Entry{ID: 1, Reference: "A"})
	_ = l.Record(ctx, "bob", Entry{ID: 2, Reference: "B"})
	a, _ := l.List(ctx, "alice")
	b, _ := l.List(ctx, "bob")
	if len(a) != 1 || a[0].Reference != "A" || len(b) != 1 || b[0].Reference != "B" {
		t.Fatalf("sessions leaked: %v %v", a, b)
	}
	empty, err := l.List(ctx, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", empty, err)
	}
}

func TestRecordAssignsTimestampID(t *testing.T) {
	l := setupTestLog(t)
	l.now = func() time.Time { return time.UnixMilli(1767225600000) }
	if err := l.Record(context.Background(), "poste-1", Entry{Reference: "X"}); err != nil {
		t.Fatal(err)
	}
	got, _ := l.List(context.Background(), "poste-1")
	if len(got) != 1 || got[0].ID != 1767225600000 {
		t.Fatalf("unexpected entries %v", got)
	}
}

func TestInvalidSessionHasNoHistory(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	if !ValidSession("abc-123_X") || Key("abc-123_X") != "devis_history:abc-123_X" {
		t.Fatalf("valid session rejected")
	}
	for _, s := range []string{"", "../../etc", "a b", strings.Repeat("x", 65)} {
		if ValidSession(s) {
			t.Fatalf("%q must be rejected", s)
		}
		if err := l.Record(ctx, s, Entry{ID: 1, Reference: "X"}); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("record %q: expected ErrInvalidSession, got %v", s, err)
		}
		got, err := l.List(ctx, s)
		if err != nil || got == nil || len(got) != 0 {
			t.Fatalf("list %q: expected empty list, got %v %v", s, got, err)
		}
	}
}

func TestEntryFor(t *testing.T) {
	d, _ := devis.ParseDate("2026-03-15")
	q := devis.Quote{
		Reference:    "DEV-20260315-AB12",
		DateEmission: d,
		Client:       devis.Client{Nom: "ACME"},
		Formation:    devis.FormationSummary{Titre: "Excel"},
		Financier:    devis.Financier{TotalTTC: 3360},
	}
	e := EntryFor(q, "file.pdf")
	if e.TotalFormate != "3\u00a0360,00\u00a0€" || e.DateEmission != "2026-03-15" || e.Filename != "file.pdf" {
		t.Fatalf("unexpected entry %+v", e)
	}
}
