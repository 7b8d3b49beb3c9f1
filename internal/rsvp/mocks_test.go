package rsvp

import (
	"context"
	"sync"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
)

type mockStore struct {
	mu       sync.Mutex
	appendFn func(ctx context.Context, sub models.Submission) error
	calls    []models.Submission
}

func (m *mockStore) AppendRSVP(ctx context.Context, sub models.Submission) error {
	m.mu.Lock()
	m.calls = append(m.calls, sub)
	m.mu.Unlock()
	if m.appendFn != nil {
		return m.appendFn(ctx, sub)
	}
	return nil
}

func (m *mockStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockEvents struct {
	events map[string]events.Event
}

func (m *mockEvents) FindBySlug(slug string) (*events.Event, error) {
	ev, ok := m.events[slug]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return &ev, nil
}

type dispatched struct {
	sub   models.Submission
	event events.Event
}

type mockDispatcher struct {
	mu   sync.Mutex
	sent []dispatched
}

func (m *mockDispatcher) Dispatch(_ context.Context, sub models.Submission, ev events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, dispatched{sub, ev})
}

func (m *mockDispatcher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testEvents() *mockEvents {
	return &mockEvents{events: map[string]events.Event{
		"haldi":    {Slug: "haldi", Title: "Haldi", Date: "2026-04-19", HasRSVPSide: true},
		"sangeeth": {Slug: "sangeeth", Title: "Sangeeth", Date: "2026-04-18"},
	}}
}
