package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-formations/internal/config"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sample() models.ContactMessage {
	return models.ContactMessage{
		Reference: "CT-20250115-ABCDEF12",
		Nom:       "Jeanne Martin",
		Email:     "jeanne.martin@example.com",
		Sujet:     "devis",
		Message:   "Bonjour,\nje souhaite un devis.",
	}
}

func TestNewSelectsNotifier(t *testing.T) {
	if _, ok := New(false, config.SMTPConfig{Host: "smtp"}).(LogNotifier); !ok {
		t.Fatalf("disabled email must log")
	}
	if _, ok := New(true, config.SMTPConfig{}).(LogNotifier); !ok {
		t.Fatalf("missing host must log")
	}
	if _, ok := New(true, config.SMTPConfig{Host: "smtp"}).(*SMTPNotifier); !ok {
		t.Fatalf("expected smtp notifier")
	}
}

func TestLogNotifierMasksEmail(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core))
	if err := (LogNotifier{}).NotifyContact(ctx, sample()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if email := entries[0].ContextMap()["email"]; email == "jeanne.martin@example.com" {
		t.Fatalf("email not masked")
	}
}

func TestSMTPNotifierMessage(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p", From: "site@example.com", To: "contact@example.com"})
	n.now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) }
	var gotAddr string
	var gotTo []string
	var gotMsg string
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}
	m := sample()
	m.Sujet = "devis\r\nBcc: victim@example.com"
	if err := n.NotifyContact(context.Background(), m); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "contact@example.com" {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	if strings.Contains(gotMsg, "\r\nBcc:") {
		t.Fatalf("header injection not neutralised:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "Reply-To: jeanne.martin@example.com") || !strings.Contains(gotMsg, "CT-20250115-ABCDEF12") {
		t.Fatalf("unexpected message:\n%s", gotMsg)
	}
}

func TestSMTPNotifierError(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 25})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	if err := n.NotifyContact(context.Background(), sample()); err == nil {
		t.Fatalf("expected error")
	}
}
