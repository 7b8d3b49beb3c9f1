package rsvp

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MsgFullNameRequired  = "Please enter your full name."
	MsgEventMissing      = "Event information is missing."
	MsgAttendanceMissing = "Please select whether you will attend."
	MsgInvalidAdults     = "Please enter a valid number of adults (0–50)."
	MsgInvalidKids       = "Please enter a valid number of kids (0–50)."
	MsgMalformedRequest  = "Invalid RSVP submission. Please try again."

	MsgAttending    = "Thank you! We can't wait to celebrate with you!"
	MsgNotAttending = "Thank you for letting us know. We'll miss you!"
	MsgDuplicate    = "It looks like you've already RSVP'd for this event. If you need to update your response, please contact us directly."
	MsgUnavailable  = "The RSVP system is temporarily unavailable. Please try again later or contact us directly."
	MsgNotAvailable = "RSVP is not available right now. Please contact us directly."
	MsgSaveFailed   = "There was an issue saving your RSVP. Please try again or contact us directly."
	MsgGeneric      = "Something went wrong. Please try again or contact us directly."

	MaxPartySize = 50
)

// ValidationError is a guest-facing rejection of a submission
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type fieldRule struct {
	field   string
	tag     string
	message string
	value   func(req *SubmitRSVPRequest) (interface{}, bool)
}

func stringField(get func(req *SubmitRSVPRequest) string) func(req *SubmitRSVPRequest) (interface{}, bool) {
	return func(req *SubmitRSVPRequest) (interface{}, bool) {
		return strings.TrimSpace(get(req)), true
	}
}

// numberField skips unset numbers and reports set-but-invalid ones as failing
func numberField(get func(req *SubmitRSVPRequest) OptionalNumber) func(req *SubmitRSVPRequest) (interface{}, bool) {
	return func(req *SubmitRSVPRequest) (interface{}, bool) {
		n := get(req)
		if !n.Set {
			return nil, false
		}
		if !n.Valid {
			return nil, true
		}
		return n.Value, true
	}
}

// rules run in order and stop at the first failure
var rules = []fieldRule{
	{"fullName", "required", MsgFullNameRequired, stringField(func(r *SubmitRSVPRequest) string { return r.FullName })},
	{"eventSlug", "required", MsgEventMissing, stringField(func(r *SubmitRSVPRequest) string { return r.EventSlug })},
	{"willAttend", "required,oneof=yes no", MsgAttendanceMissing, stringField(func(r *SubmitRSVPRequest) string { return r.WillAttend })},
	{"numberOfGuests", "gte=0,lte=50", MsgInvalidAdults, numberField(func(r *SubmitRSVPRequest) OptionalNumber { return r.NumberOfGuests })},
	{"numberOfKids", "gte=0,lte=50", MsgInvalidKids, numberField(func(r *SubmitRSVPRequest) OptionalNumber { return r.NumberOfKids })},
}

// Validator checks submissions before they reach the store
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate returns the first failing rule as a *ValidationError, or nil
func (v *Validator) Validate(req *SubmitRSVPRequest) *ValidationError {
	for _, rule := range rules {
		value, present := rule.value(req)
		if !present {
			continue
		}
		if value == nil || v.validate.Var(value, rule.tag) != nil {
			return &ValidationError{Field: rule.field, Message: rule.message}
		}
	}
	return nil
}

// IsEmail reports whether s looks like a deliverable address
func (v *Validator) IsEmail(s string) bool {
	return v.validate.Var(s, "required,email") == nil
}

// IsSide reports whether s is one of the two family sides
func (v *Validator) IsSide(s string) bool {
	return v.validate.Var(s, "required,oneof=pellikuthuru pellikoduku") == nil
}
