// Package notification sends transactional email for booking events, with
// template rendering and an SMTP implementation behind a narrow interface.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gomail/gomail"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ---------------------------------------------------------------------------
// SMTP Sender
// ---------------------------------------------------------------------------

// SMTPConfig holds connection settings for the SMTP sender.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender returns an EmailSender that delivers through the configured
// SMTP relay using gomail.
func NewSMTPSender(cfg SMTPConfig) EmailSender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}
}

func (s *smtpSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// NoopSender discards email. Used when no SMTP host is configured.
type NoopSender struct{}

func (NoopSender) SendEmail(context.Context, string, string, string) error { return nil }

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template defines a reusable notification template.
type Template struct {
	ID      string
	Name    string
	Subject string
	Body    string
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-booked",
			Name:    "Appointment Booked",
			Subject: "Appointment booked with Dr. {{doctor_name}}",
			Body:    "Dear {{patient_name}}, your appointment with Dr. {{doctor_name}} is booked for {{date}} at {{time}}. You will be notified once the doctor confirms.",
		},
		{
			ID:      "appointment-confirmed",
			Name:    "Appointment Confirmed",
			Subject: "Your appointment on {{date}} is confirmed",
			Body:    "Dear {{patient_name}}, Dr. {{doctor_name}} has confirmed your appointment on {{date}} at {{time}}. Please arrive 10 minutes early.",
		},
		{
			ID:      "appointment-cancelled",
			Name:    "Appointment Cancelled",
			Subject: "Appointment on {{date}} cancelled",
			Body:    "Dear {{patient_name}}, your appointment with Dr. {{doctor_name}} on {{date}} at {{time}} has been cancelled. Any payment will be refunded.",
		},
		{
			ID:      "welcome",
			Name:    "Welcome",
			Subject: "Welcome to Arogya",
			Body:    "Dear {{name}}, your account has been created. You can now browse doctors and book appointments.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
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

// ---------------------------------------------------------------------------
// Mailer
// ---------------------------------------------------------------------------

// Mailer renders a template and sends the result through the sender.
type Mailer struct {
	sender    EmailSender
	templates *TemplateEngine
}

func NewMailer(sender EmailSender, tpl *TemplateEngine) *Mailer {
	return &Mailer{sender: sender, templates: tpl}
}

// SendFromTemplate renders the template with data and sends it to recipient.
func (m *Mailer) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return m.sender.SendEmail(ctx, recipient, subject, body)
}

// ---------------------------------------------------------------------------
// Mock Sender (test double)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
