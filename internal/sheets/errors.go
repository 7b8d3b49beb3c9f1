package sheets

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no Apps Script URL was set; no request is made
	ErrNotConfigured = errors.New("google apps script url not configured")

	// ErrAccessDenied means the store answered with an HTML page instead of JSON,
	// which Apps Script does when the deployment is not public
	ErrAccessDenied = errors.New("apps script access denied, redeploy with 'Who has access: Anyone'")

	// ErrDuplicate means the store already holds an RSVP from this guest for this event
	ErrDuplicate = errors.New("already RSVP'd")
)

// UnexpectedResponseError is returned when the store body is neither HTML nor JSON
type UnexpectedResponseError struct {
	Snippet string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("apps script returned unexpected response: %s", e.Snippet)
}

// StoreError is returned when the store explicitly rejected the write
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("apps script error: %s", e.Message)
}
