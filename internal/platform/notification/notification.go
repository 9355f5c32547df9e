// Package notification renders message templates and dispatches them through
// a pluggable sender. Delivery is best-effort: the caller dispatches via the
// detached task runner and never depends on the outcome.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Message is a single outbound notification.
type Message struct {
	ID        string            `json:"id"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sender delivers a rendered message and returns a provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Template defines a reusable notification template with {{key}} placeholders.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the invitation template
// pre-registered. Further templates are added by the caller through
// RegisterTemplate.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.RegisterTemplate(Template{
		ID:      "patient-invitation",
		Name:    "Patient Portal Invitation",
		Subject: "Your patient portal invitation",
		Body:    "Dear {{patient_name}}, your clinician has invited you to the patient portal. Use this link to activate your account: {{activation_link}}. The invitation expires on {{expires_at}}.",
	})
	return e
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Service renders templates and hands messages to the sender.
type Service struct {
	engine *TemplateEngine
	sender Sender
}

func NewService(engine *TemplateEngine, sender Sender) *Service {
	return &Service{engine: engine, sender: sender}
}

// Send renders templateID with data and dispatches it to recipient.
func (s *Service) Send(ctx context.Context, templateID, recipient string, data map[string]string) (string, error) {
	subject, body, err := s.engine.Render(templateID, data)
	if err != nil {
		return "", err
	}
	msg := Message{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
	providerID, err := s.sender.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("send %s to %s: %w", templateID, recipient, err)
	}
	return providerID, nil
}

// LogSender writes messages to the log instead of delivering them. Used in
// development and tests.
type LogSender struct {
	Logger zerolog.Logger
}

func (l *LogSender) Send(_ context.Context, msg Message) (string, error) {
	l.Logger.Info().
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Msg("notification (log only)")
	return msg.ID, nil
}
