package events

import "time"

const DateLayout = "2006-01-02"

// Theme holds the per-event colors used by the site and the confirmation email
type Theme struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
	Accent    string `yaml:"accent" json:"accent"`
}

// Event describes one wedding event. It is read-only reference data.
type Event struct {
	Slug          string `yaml:"slug" json:"slug"`
	Title         string `yaml:"title" json:"title"`
	Subtitle      string `yaml:"subtitle" json:"subtitle"`
	Tagline       string `yaml:"tagline" json:"tagline"`
	Date          string `yaml:"date" json:"date"` // YYYY-MM-DD
	Time          string `yaml:"time" json:"time"` // e.g. "10:00 AM - 1:00 PM"
	Venue         string `yaml:"venue" json:"venue"`
	VenueAddress  string `yaml:"venue_address" json:"venueAddress"`
	GoogleMapsURL string `yaml:"google_maps_url" json:"googleMapsUrl"`
	DressCode     string `yaml:"dress_code,omitempty" json:"dressCode,omitempty"`
	Description   string `yaml:"description" json:"description"`
	Theme         Theme  `yaml:"theme" json:"theme"`
	HasRSVPSide   bool   `yaml:"has_rsvp_side,omitempty" json:"hasRsvpSide,omitempty"`
}

// Day returns the event date at midnight in loc
func (e Event) Day(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, e.Date, loc)
}

type registryFile struct {
	Events []Event `yaml:"events"`
}
