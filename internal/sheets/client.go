package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"weddingrsvp/internal/shared/models"
)

const (
	noSide       = "N/A"
	maxReplySize = 1 << 20
)

// Config holds the spreadsheet store connection settings
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client appends RSVPs to the Google Sheet behind an Apps Script web app
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a store client. An empty URL is allowed; every append
// then fails with ErrNotConfigured.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has somewhere to send rows
func (c *Client) Configured() bool {
	return c.url != ""
}

// row is the sheet's column schema; field order matches the sheet
type row struct {
	Timestamp           string `json:"timestamp"`
	FullName            string `json:"fullName"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	NumberOfGuests      int    `json:"numberOfGuests"`
	NumberOfKids        int    `json:"numberOfKids"`
	WillAttend          string `json:"willAttend"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	Message             string `json:"message"`
	RSVPSide            string `json:"rsvpSide"`
	Event               string `json:"event"`
}

func newRow(s models.Submission) row {
	side := string(s.RSVPSide)
	if side == "" {
		side = noSide
	}
	return row{
		Timestamp:           s.Timestamp,
		FullName:            s.FullName,
		Phone:               s.Phone,
		Email:               s.Email,
		NumberOfGuests:      s.NumberOfGuests,
		NumberOfKids:        s.NumberOfKids,
		WillAttend:          string(s.WillAttend),
		DietaryRestrictions: s.DietaryRestrictions,
		Message:             s.Message,
		RSVPSide:            side,
		Event:               s.EventSlug,
	}
}

// AppendRSVP writes one submission. The returned error is one of
// ErrNotConfigured, ErrAccessDenied, ErrDuplicate, *UnexpectedResponseError,
// *StoreError, or a wrapped transport error.
func (c *Client) AppendRSVP(ctx context.Context, s models.Submission) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(newRow(s))
	if err != nil {
		return fmt.Errorf("failed to marshal rsvp row: %w", err)
	}

	// text/plain avoids the CORS preflight Apps Script cannot answer
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build apps script request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apps script request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return fmt.Errorf("failed to read apps script response: %w", err)
	}

	return classifyReply(string(body)).err()
}
