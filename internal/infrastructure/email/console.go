package email

import (
	"context"
	"sync"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// ConsoleSender logs messages instead of sending them. Used in development.
type ConsoleSender struct {
	logger logger.Interface
}

func NewConsoleSender(log logger.Interface) *ConsoleSender {
	return &ConsoleSender{logger: log.Named("email")}
}

func (s *ConsoleSender) Send(ctx context.Context, to, subject, textBody, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Infow("email (console backend)",
		"to", to,
		"subject", subject,
		"body", textBody,
	)
	return nil
}

// Message is a delivered email as kept by MemorySender.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MemorySender keeps every message in an outbox. Tests read it back.
type MemorySender struct {
	mu     sync.Mutex
	outbox []Message
	err    error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.outbox = append(s.outbox, Message{To: to, Subject: subject, Text: textBody, HTML: htmlBody})
	return nil
}

// FailWith makes every later Send return err. nil restores delivery.
func (s *MemorySender) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Outbox returns a copy of the messages sent so far.
func (s *MemorySender) Outbox() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.outbox))
	copy(out, s.outbox)
	return out
}

// Last returns the most recent message sent to addr.
func (s *MemorySender) Last(addr string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.outbox) - 1; i >= 0; i-- {
		if s.outbox[i].To == addr {
			return s.outbox[i], true
		}
	}
	return Message{}, false
}
