// Package notify delivers contact form submissions to the organisation.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-formations/internal/config"
	"github.com/diewo77/go-formations/internal/logger"
	"github.com/diewo77/go-formations/internal/models"
	"go.uber.org/zap"
)

type Notifier interface {
	NotifyContact(ctx context.Context, m models.ContactMessage) error
}

// LogNotifier only records the submission in the logs.
type LogNotifier struct{}

func (LogNotifier) NotifyContact(ctx context.Context, m models.ContactMessage) error {
	logger.FromContext(ctx).Info("contact message received",
		zap.String("reference", m.Reference),
		zap.String("sujet", m.Sujet),
		zap.String("email", logger.MaskEmail(m.Email)),
		zap.String("formation", m.FormationSlug),
	)
	return nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails each submission to the configured recipient.
type SMTPNotifier struct {
	cfg  config.SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (n *SMTPNotifier) NotifyContact(ctx context.Context, m models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var a smtp.Auth
	if n.cfg.User != "" {
		a = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(addr, a, n.cfg.From, []string{n.cfg.To}, n.message(m)); err != nil {
		return fmt.Errorf("smtp send %s: %w", m.Reference, err)
	}
	logger.FromContext(ctx).Info("contact notification sent", zap.String("reference", m.Reference))
	return nil
}

func (n *SMTPNotifier) message(m models.ContactMessage) []byte {
	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, headerSafe(v)) }
	header("From", n.cfg.From)
	header("To", n.cfg.To)
	header("Reply-To", m.Email)
	header("Subject", fmt.Sprintf("[%s] Nouveau message (%s)", m.Reference, m.Sujet))
	header("Date", n.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Référence : %s\r\n", m.Reference)
	fmt.Fprintf(&b, "Nom : %s\r\n", m.Nom)
	fmt.Fprintf(&b, "E-mail : %s\r\n", m.Email)
	if m.Telephone != "" {
		fmt.Fprintf(&b, "Téléphone : %s\r\n", m.Telephone)
	}
	if m.Entreprise != "" {
		fmt.Fprintf(&b, "Entreprise : %s\r\n", m.Entreprise)
	}
	if m.FormationSlug != "" {
		fmt.Fprintf(&b, "Formation : %s\r\n", m.FormationSlug)
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Message, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerSafe strips line breaks so user input cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// New picks the SMTP notifier when email is enabled and a host is configured.
func New(enabled bool, cfg config.SMTPConfig) Notifier {
	if enabled && cfg.Host != "" {
		return NewSMTPNotifier(cfg)
	}
	return LogNotifier{}
}
