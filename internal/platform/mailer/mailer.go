// Package mailer delivers user notifications over SMTP, falling back to a
// local sink when no transport is configured. Delivery problems are never
// surfaced as errors to callers: a notification that cannot go out is
// recorded and logged, and the triggering operation carries on.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

// Notifier is the notification side-channel contract. Send must tolerate a
// malformed recipient: an empty recipient or one without an "@" is treated
// as a no-op, not a failure the caller has to handle.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Notification is one recorded delivery attempt.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
	SentAt    time.Time
	// Delivered is true only when the message went out over a live SMTP
	// channel; sink-recorded attempts leave it false.
	Delivered bool
}

// Config holds the SMTP transport settings. A mailer with no Host configured
// records every attempt locally instead of sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// configured reports whether a live transport is available.
func (c Config) configured() bool {
	return c.Host != "" && c.From != ""
}

// Mailer implements Notifier. All attempts, delivered or not, are recorded
// so reminder dispatch stays observable in tests and when credentials are
// absent.
type Mailer struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	recorded []Notification

	// sendMail is swappable in tests; defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Notifier = (*Mailer)(nil)

// New creates a Mailer. When cfg carries no SMTP host the mailer acts as a
// pure local sink.
func New(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:      cfg,
		logger:   logger.With("component", "mailer"),
		sendMail: smtp.SendMail,
	}
}

// Send delivers one notification. Malformed recipients are logged and
// dropped; transport failures are logged and recorded as undelivered. The
// returned error is always nil in the current implementation, kept in the
// signature so the contract allows a stricter transport later.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" || !strings.Contains(recipient, "@") {
		m.logger.Warn("dropping notification for malformed recipient",
			"recipient", recipient,
			"subject", subject)
		return nil
	}

	note := Notification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}

	if !m.cfg.configured() {
		m.logger.Info("no SMTP transport configured, recording notification locally",
			"recipient", recipient,
			"subject", subject)
		m.record(note)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, recipient, subject, body)
	if err := m.sendMail(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		m.logger.Error("SMTP delivery failed, recording notification locally",
			"recipient", recipient,
			"subject", subject,
			"error", err)
		m.record(note)
		return nil
	}

	note.Delivered = true
	m.record(note)

	m.logger.Debug("notification delivered",
		"recipient", recipient,
		"subject", subject)
	return nil
}

// Notifications returns a copy of every recorded delivery attempt in order.
func (m *Mailer) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, len(m.recorded))
	copy(out, m.recorded)
	return out
}

func (m *Mailer) record(n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, n)
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return []byte(sb.String())
}
