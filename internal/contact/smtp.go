package contact

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string `yaml:"host" env:"VITRINE_SMTP_HOST"`
	Port string `yaml:"port" env:"VITRINE_SMTP_PORT"`
	User string `yaml:"user" env:"VITRINE_SMTP_USER"`
	Pass string `yaml:"pass" env:"VITRINE_SMTP_PASS"`
	From string `yaml:"from" env:"VITRINE_SMTP_FROM"`
	To   string `yaml:"to" env:"VITRINE_SMTP_TO"`
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != "" && c.To != ""
}

// sendFunc matches Send so tests can capture messages.
type sendFunc func(cfg SMTPConfig, to []string, subject, body string) error

// SMTPRelay delivers submissions straight to the office inbox over SMTP.
type SMTPRelay struct {
	cfg  SMTPConfig
	send sendFunc
}

// NewSMTPRelay creates a relay sending through cfg.
func NewSMTPRelay(cfg SMTPConfig) (*SMTPRelay, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("SMTP not configured")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPRelay{cfg: cfg, send: Send}, nil
}

// Submit emails p to the configured recipient.
func (r *SMTPRelay) Submit(ctx context.Context, p Payload) Outcome {
	if err := ctx.Err(); err != nil {
		slog.Warn("contact relay failed", "relay", "smtp", "error", err)
		return failed()
	}

	subject := "Contato pelo site"
	if s := strings.TrimSpace(p.Subject); s != "" {
		subject += ": " + s
	}

	if err := r.send(r.cfg, []string{r.cfg.To}, subject, FormatMessage(p)); err != nil {
		slog.Warn("contact relay failed", "relay", "smtp", "host", r.cfg.Host, "error", err)
		return failed()
	}
	slog.Info("contact submitted", "relay", "smtp", "subject", p.Subject)
	return succeeded()
}

// FormatMessage builds the plain-text email body for a submission.
func FormatMessage(p Payload) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Nova mensagem recebida pelo formulário de contato.\n\n")
	fmt.Fprintf(&buf, "Nome: %s\n", p.Name)
	fmt.Fprintf(&buf, "Email: %s\n", p.Email)
	if p.Phone != "" {
		fmt.Fprintf(&buf, "Telefone: %s\n", p.Phone)
	}
	if p.Subject != "" {
		fmt.Fprintf(&buf, "Assunto: %s\n", p.Subject)
	}
	consent := "não"
	if p.Consent {
		consent = "sim"
	}
	fmt.Fprintf(&buf, "Aceite da política de privacidade: %s\n", consent)
	if !p.SentAt.IsZero() {
		fmt.Fprintf(&buf, "Enviado em: %s\n", p.SentAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&buf, "\n%s\n", p.Message)

	return buf.String()
}

// Send sends an email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
func Send(cfg SMTPConfig, to []string, subject, body string) error {
	if cfg.Host == "" || cfg.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	msg := buildMessage(cfg.From, to, subject, body)
	addr := cfg.Host + ":" + cfg.Port

	if cfg.Port == "465" {
		return sendImplicitTLS(cfg, addr, to, msg)
	}
	return sendSTARTTLS(cfg, addr, to, msg)
}

// buildMessage assembles the raw message. The subject is written as a MIME
// encoded-word whenever it holds anything besides printable ASCII, so
// control characters can never start a new header line.
func buildMessage(from string, to []string, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from,
		strings.Join(to, ", "),
		mime.QEncoding.Encode("utf-8", subject),
		body,
	)
}

// sendImplicitTLS connects over TLS directly (port 465/SMTPS).
func sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg string) (err error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil && err == nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return nil
}

// sendSTARTTLS connects plain then upgrades to TLS (port 587).
func sendSTARTTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
