package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"sync"

	"archivemail/internal/core"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers over SMTP with PLAIN auth. Without a host it logs and
// skips, so development setups need no mail server.
type SMTPSender struct {
	host     string
	port     int
	user     string
	pass     string
	sendMail sendMailFunc
}

func NewSMTPSender(cfg *core.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.host == "" {
		slog.Warn("SMTP not configured, skipping email", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := msg.Bytes()
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	envelopeFrom, err := envelopeAddress(msg.From)
	if err != nil {
		return err
	}
	if err := s.sendMail(addr, auth, envelopeFrom, msg.To, raw); err != nil {
		return fmt.Errorf("smtp %s: %w", addr, err)
	}

	slog.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject)
	return nil
}

// LogSender only logs; used for MAIL_DRY_RUN.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *Message) error {
	if _, err := msg.Bytes(); err != nil {
		return err
	}
	slog.Info("Dry run, not delivering email", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject)
	return nil
}

// RecordingSender keeps every message in memory.
type RecordingSender struct {
	mu   sync.Mutex
	sent []*Message
	Err  error
}

func (r *RecordingSender) Send(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *RecordingSender) Sent() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.sent))
	copy(out, r.sent)
	return out
}

func (r *RecordingSender) Last() (*Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil, false
	}
	return r.sent[len(r.sent)-1], true
}

func (r *RecordingSender) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
