package notifications

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

const displayDateLayout = "Monday, January 2, 2006"

//go:embed templates/confirmation.html templates/confirmation.txt
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/confirmation.html"))
	textTemplate = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/confirmation.txt"))
)

// ConfirmationConfig carries the wedding-wide values rendered into every email
type ConfirmationConfig struct {
	CoupleName string
	Timezone   string
	LogoURL    string
	FooterLine string
}

// Message is a rendered confirmation email
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Sender delivers the confirmation for one stored RSVP
type Sender interface {
	Send(ctx context.Context, sub models.Submission, ev events.Event) error
}

// ConfiguredMailer is a Mailer that can report missing credentials
type ConfiguredMailer interface {
	Mailer
	Configured() bool
}

// ConfirmationSender renders and mails RSVP confirmations
type ConfirmationSender struct {
	mailer ConfiguredMailer
	config ConfirmationConfig
	log    *logger.Logger
}

// NewConfirmationSender creates a sender
func NewConfirmationSender(mailer ConfiguredMailer, config ConfirmationConfig, log *logger.Logger) *ConfirmationSender {
	if config.Timezone == "" {
		config.Timezone = "America/New_York"
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &ConfirmationSender{mailer: mailer, config: config, log: log}
}

// Send emails the guest. Missing credentials or a missing address skip the send without error.
func (s *ConfirmationSender) Send(ctx context.Context, sub models.Submission, ev events.Event) error {
	if sub.Email == "" {
		return nil
	}
	if !s.mailer.Configured() {
		s.log.WarnContext(ctx, "GMAIL_USER or GMAIL_APP_PASSWORD not set, skipping confirmation email")
		return nil
	}

	msg, err := s.Render(sub, ev)
	if err != nil {
		return err
	}

	if err := s.mailer.SendHTML(ctx, sub.Email, msg.Subject, msg.HTML, msg.Text); err != nil {
		return err
	}
	s.log.LogEmailSent(ctx, sub.Email, ev.Slug)
	return nil
}

// Render builds the subject and both bodies without sending anything
func (s *ConfirmationSender) Render(sub models.Submission, ev events.Event) (*Message, error) {
	view := confirmationView{
		Submission:  sub,
		Event:       ev,
		Attending:   sub.Attending(),
		CalendarURL: CalendarLink(ev, s.config.CoupleName, s.config.Timezone),
		CoupleName:  s.config.CoupleName,
		LogoURL:     s.config.LogoURL,
		FooterLine:  s.config.FooterLine,
		DateDisplay: ev.Date,
	}
	if day, err := ev.Day(time.UTC); err == nil {
		view.DateDisplay = day.Format(displayDateLayout)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTemplate.Execute(&htmlBuf, view); err != nil {
		return nil, fmt.Errorf("failed to execute HTML template: %w", err)
	}
	if err := textTemplate.Execute(&textBuf, view); err != nil {
		return nil, fmt.Errorf("failed to execute text template: %w", err)
	}

	return &Message{
		Subject: s.subject(sub, ev),
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

func (s *ConfirmationSender) subject(sub models.Submission, ev events.Event) string {
	verb := "Received"
	if sub.Attending() {
		verb = "Confirmed"
	}
	return fmt.Sprintf("RSVP %s — %s | %s's Wedding", verb, ev.Title, s.config.CoupleName)
}

type confirmationView struct {
	Submission  models.Submission
	Event       events.Event
	Attending   bool
	DateDisplay string
	CalendarURL string
	CoupleName  string
	LogoURL     string
	FooterLine  string
}
