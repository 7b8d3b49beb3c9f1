package rsvp

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weddingrsvp/internal/sheets"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 15, 4, 5, 123_000_000, time.UTC)

func newTestService(store *mockStore, d *mockDispatcher) Service {
	var dispatcher ConfirmationDispatcher
	if d != nil {
		dispatcher = d
	}
	return NewService(store, testEvents(), dispatcher, logger.NewDiscard(),
		WithClock(func() time.Time { return fixedNow }))
}

func validRequest() *SubmitRSVPRequest {
	return &SubmitRSVPRequest{
		FullName:       "Asha Rao",
		EventSlug:      "haldi",
		WillAttend:     "yes",
		NumberOfGuests: Number(2),
		NumberOfKids:   Number(1),
		Email:          "asha@example.com",
	}
}

func TestSubmit_ValidationOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *SubmitRSVPRequest)
		want   string
	}{
		{"blank name", func(r *SubmitRSVPRequest) { r.FullName = "   " }, MsgFullNameRequired},
		{"blank name wins over missing slug", func(r *SubmitRSVPRequest) { r.FullName = ""; r.EventSlug = "" }, MsgFullNameRequired},
		{"missing slug", func(r *SubmitRSVPRequest) { r.EventSlug = "" }, MsgEventMissing},
		{"missing attendance", func(r *SubmitRSVPRequest) { r.WillAttend = "" }, MsgAttendanceMissing},
		{"unknown attendance", func(r *SubmitRSVPRequest) { r.WillAttend = "maybe" }, MsgAttendanceMissing},
		{"too many adults", func(r *SubmitRSVPRequest) { r.NumberOfGuests = Number(75) }, MsgInvalidAdults},
		{"negative adults", func(r *SubmitRSVPRequest) { r.NumberOfGuests = Number(-1) }, MsgInvalidAdults},
		{"non numeric adults", func(r *SubmitRSVPRequest) { r.NumberOfGuests = OptionalNumber{Set: true} }, MsgInvalidAdults},
		{"adults checked before kids", func(r *SubmitRSVPRequest) { r.NumberOfGuests = Number(51); r.NumberOfKids = Number(51) }, MsgInvalidAdults},
		{"too many kids", func(r *SubmitRSVPRequest) { r.NumberOfKids = Number(50.6) }, MsgInvalidKids},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			req := validRequest()
			tc.mutate(req)

			result := newTestService(store, nil).Submit(context.Background(), req)

			assert.Equal(t, StatusInvalid, result.Status)
			assert.Equal(t, http.StatusBadRequest, result.HTTPStatus)
			assert.False(t, result.Success)
			assert.Equal(t, tc.want, result.Message)
			assert.Equal(t, 0, store.callCount())
		})
	}
}

func TestSubmit_StoresNormalizedSubmission(t *testing.T) {
	store := &mockStore{}
	d := &mockDispatcher{}

	result := newTestService(store, d).Submit(context.Background(), validRequest())

	assert.Equal(t, Result{Status: StatusStored, HTTPStatus: http.StatusOK, Success: true, Message: MsgAttending}, result)
	require.Equal(t, 1, store.callCount())

	sub := store.calls[0]
	assert.Equal(t, "Asha Rao", sub.FullName)
	assert.Equal(t, 2, sub.NumberOfGuests)
	assert.Equal(t, 1, sub.NumberOfKids)
	assert.Equal(t, "2026-03-01T15:04:05.123Z", sub.Timestamp)

	require.Equal(t, 1, d.count())
	assert.Equal(t, "asha@example.com", d.sent[0].sub.Email)
	assert.Equal(t, "haldi", d.sent[0].event.Slug)
}

func TestSubmit_Normalization(t *testing.T) {
	cases := []struct {
		name         string
		guests, kids OptionalNumber
		wantGuests   int
		wantKids     int
	}{
		{"absent", OptionalNumber{}, OptionalNumber{}, 1, 0},
		{"zero adults default to one", Number(0), Number(0), 1, 0},
		{"rounded", Number(2.6), Number(1.4), 3, 1},
		{"rounds to zero then defaults", Number(0.4), Number(0.4), 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			req := validRequest()
			req.NumberOfGuests, req.NumberOfKids = tc.guests, tc.kids

			result := newTestService(store, nil).Submit(context.Background(), req)
			require.True(t, result.Success)
			assert.Equal(t, tc.wantGuests, store.calls[0].NumberOfGuests)
			assert.Equal(t, tc.wantKids, store.calls[0].NumberOfKids)
		})
	}
}

func TestSubmit_TrimsAndIgnoresClientTimestamp(t *testing.T) {
	store := &mockStore{}
	req := validRequest()
	req.FullName = "  Asha Rao  "
	req.EventSlug = " haldi "
	req.Timestamp = "1999-01-01T00:00:00Z"

	newTestService(store, nil).Submit(context.Background(), req)

	require.Equal(t, 1, store.callCount())
	assert.Equal(t, "Asha Rao", store.calls[0].FullName)
	assert.Equal(t, "haldi", store.calls[0].EventSlug)
	assert.Equal(t, "2026-03-01T15:04:05.123Z", store.calls[0].Timestamp)
}

func TestSubmit_RSVPSide(t *testing.T) {
	cases := []struct {
		name string
		slug string
		side string
		want models.Side
	}{
		{"kept for two-sided event", "haldi", "pellikoduku", models.SideGroom},
		{"unknown value dropped", "haldi", "friends", ""},
		{"dropped for single-sided event", "sangeeth", "pellikuthuru", ""},
		{"kept for unknown event", "after-party", "pellikuthuru", models.SideBride},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			req := validRequest()
			req.EventSlug, req.RSVPSide = tc.slug, tc.side

			newTestService(store, nil).Submit(context.Background(), req)
			require.Equal(t, 1, store.callCount())
			assert.Equal(t, tc.want, store.calls[0].RSVPSide)
		})
	}
}

func TestSubmit_NotAttendingMessage(t *testing.T) {
	req := validRequest()
	req.WillAttend = "no"

	result := newTestService(&mockStore{}, nil).Submit(context.Background(), req)
	assert.True(t, result.Success)
	assert.Equal(t, MsgNotAttending, result.Message)
	assert.Contains(t, result.Message, "miss you")
}

func TestSubmit_StoreOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  Status
		code    int
		message string
	}{
		{"duplicate", sheets.ErrDuplicate, StatusDuplicate, http.StatusConflict, MsgDuplicate},
		{"access denied", sheets.ErrAccessDenied, StatusFailed, http.StatusInternalServerError, MsgUnavailable},
		{"not configured", sheets.ErrNotConfigured, StatusFailed, http.StatusInternalServerError, MsgNotAvailable},
		{"store error", &sheets.StoreError{Message: "sheet locked"}, StatusFailed, http.StatusInternalServerError, MsgSaveFailed},
		{"unexpected response", &sheets.UnexpectedResponseError{Snippet: "busy"}, StatusFailed, http.StatusInternalServerError, MsgGeneric},
		{"transport", errors.New("dial tcp: connection refused"), StatusFailed, http.StatusInternalServerError, MsgGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{appendFn: func(context.Context, models.Submission) error { return tc.err }}
			d := &mockDispatcher{}

			result := newTestService(store, d).Submit(context.Background(), validRequest())

			assert.Equal(t, tc.status, result.Status)
			assert.Equal(t, tc.code, result.HTTPStatus)
			assert.False(t, result.Success)
			assert.Equal(t, tc.message, result.Message)
			assert.NotContains(t, result.Message, "sheet locked")
			assert.Equal(t, 0, d.count())
		})
	}
}

func TestSubmit_ConfirmationConditions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *SubmitRSVPRequest)
		want   int
	}{
		{"no email", func(r *SubmitRSVPRequest) { r.Email = "" }, 0},
		{"unknown event", func(r *SubmitRSVPRequest) { r.EventSlug = "after-party" }, 0},
		{"invalid address", func(r *SubmitRSVPRequest) { r.Email = "not-an-email" }, 0},
		{"declined guests still get one", func(r *SubmitRSVPRequest) { r.WillAttend = "no" }, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &mockDispatcher{}
			req := validRequest()
			tc.mutate(req)

			result := newTestService(&mockStore{}, d).Submit(context.Background(), req)
			require.True(t, result.Success)
			assert.Equal(t, tc.want, d.count())
		})
	}
}

func TestSubmit_NoDispatcher(t *testing.T) {
	result := newTestService(&mockStore{}, nil).Submit(context.Background(), validRequest())
	assert.True(t, result.Success)
}

func TestSubmit_SamePayloadTwice(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, nil)

	first := svc.Submit(context.Background(), validRequest())
	second := svc.Submit(context.Background(), validRequest())

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, 2, store.callCount())
}
