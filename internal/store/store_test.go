package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-formations/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestFormationsCRUD(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	f := &models.Formation{Slug: "excel-avance", Titre: "Excel avancé", Objectifs: []string{"TCD", "Macros"}, TarifIndividuel: 80, TarifGroupe: 60}
	if err := s.Formations.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Etat != models.EtatActive {
		t.Fatalf("expected default etat active, got %q", f.Etat)
	}
	dup := &models.Formation{Slug: "excel-avance", Titre: "Doublon"}
	if err := s.Formations.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.Formations.GetBySlug(ctx, "excel-avance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Objectifs) != 2 || got.Objectifs[1] != "Macros" {
		t.Fatalf("objectifs not round-tripped: %v", got.Objectifs)
	}

	upd := &models.Formation{Slug: "excel-avance", Titre: "Excel expert", TarifIndividuel: 90}
	if err := s.Formations.Update(ctx, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.Formations.GetBySlug(ctx, "excel-avance")
	if got.Titre != "Excel expert" || got.TarifIndividuel != 90 || got.Etat != models.EtatActive {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.Formations.Delete(ctx, "excel-avance"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Formations.GetBySlug(ctx, "excel-avance"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Formations.Delete(ctx, "excel-avance"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDevisDuplicateReference(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	rec := models.DevisRecord{Reference: "DEV-20260101-AB12", FormationSlug: "excel", ClientNom: "ACME", ClientEmail: "a@acme.fr", DateEmission: time.Now(), TotalTTC: 3360, Payload: "{}"}
	if err := s.Devis.Create(ctx, &rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	again := rec
	again.ID = 0
	if err := s.Devis.Create(ctx, &again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, err := s.Devis.GetByReference(ctx, "DEV-20260101-AB12")
	if err != nil || got.TotalTTC != 3360 {
		t.Fatalf("get: %v %+v", err, got)
	}
	list, total, err := s.Devis.List(ctx, 0, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("list: %v total=%d len=%d", err, total, len(list))
	}
}

func TestKVPutOverwrites(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	if _, err := s.KV.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.KV.Put(ctx, "k", []byte(`[1]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.KV.Put(ctx, "k", []byte(`[2,1]`)); err != nil {
		t.Fatalf("put again: %v", err)
	}
	v, err := s.KV.Get(ctx, "k")
	if err != nil || string(v) != `[2,1]` {
		t.Fatalf("expected overwrite, got %q %v", v, err)
	}
}

func TestContactsListAndNotify(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m := &models.ContactMessage{Reference: fmt.Sprintf("CT-%d", i), Nom: "N", Email: "n@x.fr", Sujet: "information", Message: "hello", Consentement: true}
		if err := s.Contacts.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.Contacts.MarkNotified(ctx, 1); err != nil {
		t.Fatalf("mark: %v", err)
	}
	list, total, err := s.Contacts.List(ctx, 2, 0)
	if err != nil || total != 3 || len(list) != 2 {
		t.Fatalf("list: %v total=%d len=%d", err, total, len(list))
	}
	if list[0].Reference != "CT-2" {
		t.Fatalf("expected newest first, got %s", list[0].Reference)
	}
}

func TestUsersByEmailNormalised(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	u := models.User{Email: "admin@formations.fr", Password: "hash", Role: models.RoleAdmin}
	if err := s.DB.Create(&u).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Users.GetByEmail(ctx, "  Admin@Formations.fr ")
	if err != nil || got.ID != u.ID {
		t.Fatalf("lookup: %v %+v", err, got)
	}
	if _, err := s.Users.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
