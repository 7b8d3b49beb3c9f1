// Package rsvpclient submits RSVPs to the wedding RSVP service the way the
// site's form does, and keeps the same device-local convenience caches.
package rsvpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weddingrsvp/pkg/cache"
)

const (
	DetailsKey = "wedding-rsvp-details"
	EventsKey  = "wedding-rsvp-events"

	DefaultPath = "/api/v1/rsvp"

	MsgFullNameRequired  = "Please enter your full name."
	MsgEventMissing      = "Event information is missing."
	MsgAttendanceMissing = "Please select whether you will attend."
	MsgNetworkFailure    = "Failed to submit. Please try again."
	MsgServerFallback    = "Something went wrong. Please try again."
)

// Form is what a guest fills in for one event
type Form struct {
	FullName            string `json:"fullName"`
	EventSlug           string `json:"eventSlug"`
	WillAttend          string `json:"willAttend"`
	NumberOfGuests      int    `json:"numberOfGuests"`
	NumberOfKids        int    `json:"numberOfKids"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	Message             string `json:"message"`
	RSVPSide            string `json:"rsvpSide,omitempty"`
	Timestamp           string `json:"timestamp"`
}

// Details is the prefill cache entry shared across events
type Details struct {
	FullName            string `json:"fullName"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	NumberOfGuests      int    `json:"numberOfGuests"`
	NumberOfKids        int    `json:"numberOfKids"`
	WillAttend          string `json:"willAttend"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
}

// Marker records that this device already answered for an event
type Marker struct {
	Email      string `json:"email"`
	WillAttend string `json:"willAttend"`
}

// Result is what the guest is shown
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	store      cache.Store
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPath overrides the submission path, e.g. "/api/rsvp" for the legacy route
func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// New creates a client for the service at baseURL. store may be nil, which disables the caches.
func New(baseURL string, store cache.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit runs the local checks, posts the form, and on success updates the caches.
// Guest-facing outcomes are always in Result; err is set only for transport failures.
func (c *Client) Submit(ctx context.Context, form Form) (Result, error) {
	if msg := check(form); msg != "" {
		return Result{Message: msg}, nil
	}

	if form.NumberOfGuests == 0 {
		form.NumberOfGuests = 1
	}
	form.Timestamp = c.now().UTC().Format(time.RFC3339Nano)

	body, err := json.Marshal(form)
	if err != nil {
		return Result{Message: MsgNetworkFailure}, fmt.Errorf("failed to encode rsvp: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return Result{Message: MsgNetworkFailure}, fmt.Errorf("failed to build rsvp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Message: MsgNetworkFailure}, fmt.Errorf("rsvp request failed: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{Message: MsgNetworkFailure}, fmt.Errorf("failed to decode rsvp response (status %d): %w", resp.StatusCode, err)
	}

	if !result.Success {
		if result.Message == "" {
			result.Message = MsgServerFallback
		}
		return result, nil
	}

	c.remember(ctx, form)
	return result, nil
}

// Prefill returns a form for slug seeded from the last successful submission
func (c *Client) Prefill(ctx context.Context, slug string) (Form, bool) {
	form := Form{EventSlug: slug, WillAttend: "yes", NumberOfGuests: 1}
	if c.store == nil {
		return form, false
	}

	var d Details
	if err := c.store.Get(ctx, DetailsKey, &d); err != nil {
		return form, false
	}

	form.FullName = d.FullName
	form.Phone = d.Phone
	form.Email = d.Email
	form.NumberOfGuests = d.NumberOfGuests
	form.NumberOfKids = d.NumberOfKids
	form.DietaryRestrictions = d.DietaryRestrictions
	if d.WillAttend != "" {
		form.WillAttend = d.WillAttend
	}
	return form, true
}

// AlreadyRSVPd reports the local marker for slug. It is a hint for the UI only;
// the service decides what counts as a duplicate.
func (c *Client) AlreadyRSVPd(ctx context.Context, slug string) (Marker, bool) {
	markers := c.markers(ctx)
	m, ok := markers[slug]
	return m, ok
}

func (c *Client) markers(ctx context.Context) map[string]Marker {
	markers := make(map[string]Marker)
	if c.store == nil {
		return markers
	}
	if err := c.store.Get(ctx, EventsKey, &markers); err != nil || markers == nil {
		return make(map[string]Marker)
	}
	return markers
}

// remember updates both caches; failures are ignored since the RSVP is already stored
func (c *Client) remember(ctx context.Context, form Form) {
	if c.store == nil {
		return
	}

	_ = c.store.Set(ctx, DetailsKey, Details{
		FullName:            form.FullName,
		Phone:               form.Phone,
		Email:               form.Email,
		NumberOfGuests:      form.NumberOfGuests,
		NumberOfKids:        form.NumberOfKids,
		WillAttend:          form.WillAttend,
		DietaryRestrictions: form.DietaryRestrictions,
	}, 0)

	markers := c.markers(ctx)
	markers[form.EventSlug] = Marker{Email: form.Email, WillAttend: form.WillAttend}
	_ = c.store.Set(ctx, EventsKey, markers, 0)
}

func check(form Form) string {
	switch {
	case strings.TrimSpace(form.FullName) == "":
		return MsgFullNameRequired
	case strings.TrimSpace(form.EventSlug) == "":
		return MsgEventMissing
	case form.WillAttend != "yes" && form.WillAttend != "no":
		return MsgAttendanceMissing
	default:
		return ""
	}
}
