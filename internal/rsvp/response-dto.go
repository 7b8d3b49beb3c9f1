package rsvp

// Status classifies the outcome of a submission
type Status int

const (
	StatusStored Status = iota
	StatusInvalid
	StatusDuplicate
	StatusFailed
)

// Result is what Submit hands back to the transport layer. Message is always safe to show a guest.
type Result struct {
	Status     Status
	HTTPStatus int
	Success    bool
	Message    string
}
