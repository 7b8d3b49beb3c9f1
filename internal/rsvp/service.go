package rsvp

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/sheets"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Store is the system of record for submissions
type Store interface {
	AppendRSVP(ctx context.Context, sub models.Submission) error
}

// EventFinder resolves event slugs
type EventFinder interface {
	FindBySlug(slug string) (*events.Event, error)
}

// ConfirmationDispatcher hands a confirmation off without waiting for delivery
type ConfirmationDispatcher interface {
	Dispatch(ctx context.Context, sub models.Submission, ev events.Event)
}

// Service interface defines the contract for RSVP business logic
type Service interface {
	Submit(ctx context.Context, req *SubmitRSVPRequest) Result
}

type service struct {
	store      Store
	events     EventFinder
	dispatcher ConfirmationDispatcher
	validator  *Validator
	log        *logger.Logger
	now        func() time.Time
}

// Option customizes a service
type Option func(*service)

// WithClock replaces the time source used for submission timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService wires the pipeline. dispatcher may be nil, which disables confirmation emails.
func NewService(store Store, finder EventFinder, dispatcher ConfirmationDispatcher, log *logger.Logger, opts ...Option) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	s := &service{
		store:      store,
		events:     finder,
		dispatcher: dispatcher,
		validator:  NewValidator(),
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates, normalizes and stores one RSVP. It never returns an error;
// every failure becomes a Result with a guest-facing message.
func (s *service) Submit(ctx context.Context, req *SubmitRSVPRequest) Result {
	if verr := s.validator.Validate(req); verr != nil {
		return invalid(verr.Message)
	}

	event := s.lookupEvent(req.EventSlug)
	sub := s.normalize(req, event)

	s.log.LogRSVPReceived(ctx, sub.EventSlug, string(sub.WillAttend), sub.NumberOfGuests, sub.NumberOfKids)

	start := s.now()
	if err := s.store.AppendRSVP(ctx, sub); err != nil {
		return s.storeFailure(ctx, sub.EventSlug, err)
	}
	s.log.LogRSVPStored(ctx, sub.EventSlug, s.now().Sub(start))

	s.confirm(ctx, sub, event)

	msg := MsgNotAttending
	if sub.Attending() {
		msg = MsgAttending
	}
	return Result{Status: StatusStored, HTTPStatus: http.StatusOK, Success: true, Message: msg}
}

func (s *service) lookupEvent(slug string) *events.Event {
	if s.events == nil {
		return nil
	}
	ev, err := s.events.FindBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil
	}
	return ev
}

func (s *service) normalize(req *SubmitRSVPRequest, event *events.Event) models.Submission {
	sub := models.Submission{
		FullName:            strings.TrimSpace(req.FullName),
		EventSlug:           strings.TrimSpace(req.EventSlug),
		WillAttend:          models.Attendance(strings.TrimSpace(req.WillAttend)),
		NumberOfGuests:      partySize(req.NumberOfGuests, 1),
		NumberOfKids:        partySize(req.NumberOfKids, 0),
		Phone:               strings.TrimSpace(req.Phone),
		Email:               strings.TrimSpace(req.Email),
		DietaryRestrictions: strings.TrimSpace(req.DietaryRestrictions),
		Message:             strings.TrimSpace(req.Message),
		Timestamp:           s.now().UTC().Format(timestampLayout),
	}

	side := strings.TrimSpace(req.RSVPSide)
	if s.validator.IsSide(side) && (event == nil || event.HasRSVPSide) {
		sub.RSVPSide = models.Side(side)
	}
	return sub
}

// partySize rounds a validated count, clamps it at zero, and substitutes def for zero
func partySize(n OptionalNumber, def int) int {
	if !n.Set || !n.Valid {
		return def
	}
	v := int(math.Max(0, math.Round(n.Value)))
	if v == 0 {
		return def
	}
	return v
}

func (s *service) storeFailure(ctx context.Context, slug string, err error) Result {
	var storeErr *sheets.StoreError

	switch {
	case errors.Is(err, sheets.ErrDuplicate):
		s.log.LogRSVPDuplicate(ctx, slug)
		return Result{Status: StatusDuplicate, HTTPStatus: http.StatusConflict, Message: MsgDuplicate}
	case errors.Is(err, sheets.ErrAccessDenied):
		s.log.LogStoreFailure(ctx, slug, "access_denied", err)
		return failed(MsgUnavailable)
	case errors.Is(err, sheets.ErrNotConfigured):
		s.log.LogStoreFailure(ctx, slug, "not_configured", err)
		return failed(MsgNotAvailable)
	case errors.As(err, &storeErr):
		s.log.LogStoreFailure(ctx, slug, "store_error", err)
		return failed(MsgSaveFailed)
	default:
		s.log.LogStoreFailure(ctx, slug, "unexpected", err)
		return failed(MsgGeneric)
	}
}

func (s *service) confirm(ctx context.Context, sub models.Submission, event *events.Event) {
	if s.dispatcher == nil || sub.Email == "" || event == nil {
		return
	}
	if !s.validator.IsEmail(sub.Email) {
		s.log.WarnContext(ctx, "Skipping confirmation email for invalid address", "event", sub.EventSlug)
		return
	}
	s.dispatcher.Dispatch(ctx, sub, *event)
}

func invalid(msg string) Result {
	return Result{Status: StatusInvalid, HTTPStatus: http.StatusBadRequest, Message: msg}
}

func failed(msg string) Result {
	return Result{Status: StatusFailed, HTTPStatus: http.StatusInternalServerError, Message: msg}
}
