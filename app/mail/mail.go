// Package mail sends user notifications.
package mail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
)

// Message is a single notification email.
type Message struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ── Outbox ───────────────────────────────────────────────────────────────────

// Outbox keeps every message sent by the log driver, newest last.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
}

// NewOutbox returns an empty Outbox.
func NewOutbox() *Outbox { return &Outbox{} }

func (o *Outbox) add(msg Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
}

// All returns a copy of the sent messages.
func (o *Outbox) All() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message{}, o.sent...)
}

// ── Drivers ──────────────────────────────────────────────────────────────────

// LogMailer records messages in an Outbox and logs them instead of
// delivering them.
type LogMailer struct {
	from   string
	outbox *Outbox
	log    *zap.Logger
	now    func() time.Time
}

// Send records msg, filling in the default sender.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.From == "" {
		msg.From = m.from
	}
	msg.SentAt = m.now()
	m.outbox.add(msg)
	m.log.Info("mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NullMailer drops every message.
type NullMailer struct{}

// Send discards msg.
func (NullMailer) Send(context.Context, Message) error { return nil }

// New picks the driver named by cfg.Mail.Driver.
func New(cfg *config.Config, outbox *Outbox, log *zap.Logger) (Mailer, error) {
	switch cfg.Mail.Driver {
	case "log":
		return &LogMailer{from: cfg.Mail.From, outbox: outbox, log: log, now: time.Now}, nil
	case "null":
		return NullMailer{}, nil
	default:
		return nil, fmt.Errorf("mail: unknown driver %q", cfg.Mail.Driver)
	}
}
