package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

type sentMail struct {
	to, subject, html, text string
}

type mockMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []sentMail
}

func (m *mockMailer) Configured() bool { return m.configured }

func (m *mockMailer) SendHTML(_ context.Context, to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, htmlBody, textBody})
	return nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func haldi() events.Event {
	return events.Event{
		Slug:          "haldi",
		Title:         "Haldi",
		Subtitle:      "Turmeric Ceremony",
		Date:          "2026-04-19",
		Time:          "10:00 AM - 1:00 PM",
		Venue:         "Garden Pavilion",
		VenueAddress:  "1 Main St, Atlanta, GA",
		GoogleMapsURL: "https://maps.google.com/?q=garden",
		DressCode:     "Yellow",
		Description:   "Turmeric and laughter",
		Theme:         events.Theme{Primary: "#B8860B"},
	}
}

func guest(attend models.Attendance) models.Submission {
	return models.Submission{
		FullName:       "Asha Rao",
		EventSlug:      "haldi",
		WillAttend:     attend,
		NumberOfGuests: 2,
		Email:          "asha@example.com",
	}
}

func newTestSender(m *mockMailer) *ConfirmationSender {
	return NewConfirmationSender(m, ConfirmationConfig{
		CoupleName: "Neelu & Aditya",
		FooterLine: "April 2026 · Atlanta, Georgia",
		LogoURL:    "https://example.com/logo.jpeg",
	}, logger.NewDiscard())
}

func TestRender_Attending(t *testing.T) {
	msg, err := newTestSender(&mockMailer{configured: true}).Render(guest(models.AttendanceYes), haldi())
	require.NoError(t, err)

	assert.Equal(t, "RSVP Confirmed — Haldi | Neelu & Aditya's Wedding", msg.Subject)
	assert.Contains(t, msg.HTML, "You're attending!")
	assert.Contains(t, msg.HTML, "Adults: <strong>2</strong>")
	assert.NotContains(t, msg.HTML, "Kids:")
	assert.Contains(t, msg.HTML, "Sunday, April 19, 2026")
	assert.Contains(t, msg.HTML, "Add to Calendar")
	assert.Contains(t, msg.HTML, "View on Maps")
	assert.Contains(t, msg.HTML, "calendar.google.com/calendar/render")
	assert.Contains(t, msg.HTML, "Yellow")
	assert.Contains(t, msg.HTML, "Neelu &amp; Aditya")
	assert.Contains(t, msg.HTML, "Questions? Reply to this email or contact us directly.")

	assert.Contains(t, msg.Text, "You're attending!")
	assert.Contains(t, msg.Text, "Add to calendar: https://calendar.google.com/")
}

func TestRender_NotAttending(t *testing.T) {
	sub := guest(models.AttendanceNo)
	sub.NumberOfKids = 1
	sub.DietaryRestrictions = "Vegetarian"

	msg, err := newTestSender(&mockMailer{configured: true}).Render(sub, haldi())
	require.NoError(t, err)

	assert.Equal(t, "RSVP Received — Haldi | Neelu & Aditya's Wedding", msg.Subject)
	assert.Contains(t, msg.HTML, "We'll miss you!")
	assert.Contains(t, msg.HTML, "Kids: <strong>1</strong>")
	assert.Contains(t, msg.HTML, "Dietary: Vegetarian")
	assert.NotContains(t, msg.HTML, "Add to Calendar")
	assert.NotContains(t, msg.HTML, "View on Maps")
	assert.NotContains(t, msg.Text, "Add to calendar")
}

func TestRender_EscapesGuestInput(t *testing.T) {
	sub := guest(models.AttendanceYes)
	sub.FullName = "<script>alert(1)</script>"

	msg, err := newTestSender(&mockMailer{configured: true}).Render(sub, haldi())
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestSend_SkipsWithoutCredentials(t *testing.T) {
	m := &mockMailer{configured: false}
	err := newTestSender(m).Send(context.Background(), guest(models.AttendanceYes), haldi())
	assert.NoError(t, err)
	assert.Equal(t, 0, m.count())
}

func TestSend_SkipsWithoutAddress(t *testing.T) {
	m := &mockMailer{configured: true}
	sub := guest(models.AttendanceYes)
	sub.Email = ""
	assert.NoError(t, newTestSender(m).Send(context.Background(), sub, haldi()))
	assert.Equal(t, 0, m.count())
}

func TestSend_Delivers(t *testing.T) {
	m := &mockMailer{configured: true}
	require.NoError(t, newTestSender(m).Send(context.Background(), guest(models.AttendanceYes), haldi()))
	require.Equal(t, 1, m.count())
	assert.Equal(t, "asha@example.com", m.sent[0].to)
	assert.True(t, strings.HasPrefix(m.sent[0].subject, "RSVP Confirmed"))
}

func TestSend_ReturnsMailerError(t *testing.T) {
	m := &mockMailer{configured: true, err: errors.New("smtp down")}
	err := newTestSender(m).Send(context.Background(), guest(models.AttendanceYes), haldi())
	assert.EqualError(t, err, "smtp down")
}

type blockingSender struct {
	release chan struct{}
	calls   chan models.Submission
	err     error
}

func (b *blockingSender) Send(ctx context.Context, sub models.Submission, _ events.Event) error {
	b.calls <- sub
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.err
}

func TestAsyncDispatcher_DoesNotBlockCaller(t *testing.T) {
	s := &blockingSender{release: make(chan struct{}), calls: make(chan models.Submission, 1)}
	d := NewAsyncDispatcher(s, time.Minute, logger.NewDiscard())

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, guest(models.AttendanceYes), haldi())
	// the request finishing must not cancel the send
	cancel()

	select {
	case sub := <-s.calls:
		assert.Equal(t, "Asha Rao", sub.FullName)
	case <-time.After(time.Second):
		t.Fatal("sender was not called")
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, d.Wait(waitCtx), context.DeadlineExceeded)

	close(s.release)
	assert.NoError(t, d.Wait(context.Background()))
}

func TestAsyncDispatcher_SwallowsFailures(t *testing.T) {
	s := &blockingSender{release: make(chan struct{}), calls: make(chan models.Submission, 1), err: errors.New("boom")}
	close(s.release)

	d := NewAsyncDispatcher(s, time.Minute, logger.NewDiscard())
	d.Dispatch(context.Background(), guest(models.AttendanceYes), haldi())
	assert.NoError(t, d.Wait(context.Background()))
}
