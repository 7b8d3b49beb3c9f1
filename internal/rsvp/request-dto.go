package rsvp

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SubmitRSVPRequest is the body of POST /rsvp. A client-supplied timestamp is accepted and ignored.
type SubmitRSVPRequest struct {
	FullName            string         `json:"fullName" example:"Asha Rao"`
	EventSlug           string         `json:"eventSlug" example:"haldi"`
	WillAttend          string         `json:"willAttend" example:"yes" enums:"yes,no"`
	NumberOfGuests      OptionalNumber `json:"numberOfGuests" swaggertype:"number" example:"2"`
	NumberOfKids        OptionalNumber `json:"numberOfKids" swaggertype:"number" example:"1"`
	Phone               string         `json:"phone"`
	Email               string         `json:"email" example:"asha@example.com"`
	DietaryRestrictions string         `json:"dietaryRestrictions"`
	Message             string         `json:"message"`
	RSVPSide            string         `json:"rsvpSide" enums:"pellikuthuru,pellikoduku"`
	Timestamp           string         `json:"timestamp" swaggerignore:"true"`
}

// OptionalNumber is a loosely typed numeric field. It accepts a JSON number or a
// numeric string. null, an empty string, or a missing key leave it unset; any
// other value marks it set but invalid. Decoding never fails.
type OptionalNumber struct {
	Set   bool
	Valid bool
	Value float64
}

// Number returns a set, valid OptionalNumber
func Number(v float64) OptionalNumber {
	return OptionalNumber{Set: true, Valid: true, Value: v}
}

func (n *OptionalNumber) UnmarshalJSON(data []byte) error {
	*n = OptionalNumber{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.Set = true
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	n.Set = true
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.Valid = true
	n.Value = v
	return nil
}

func (n OptionalNumber) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
