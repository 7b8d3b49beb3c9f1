package models

// Attendance is the guest's answer to "will you attend?"
type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// Valid reports whether a is one of the two accepted answers
func (a Attendance) Valid() bool {
	return a == AttendanceYes || a == AttendanceNo
}

// Side is the family side a guest belongs to, for events hosted by both families
type Side string

const (
	SideBride Side = "pellikuthuru"
	SideGroom Side = "pellikoduku"
)

// Valid reports whether s is a known family side
func (s Side) Valid() bool {
	return s == SideBride || s == SideGroom
}

// Submission is one guest's normalized RSVP for one event.
// It is built per request and never mutated after it is forwarded.
type Submission struct {
	FullName            string     `json:"fullName"`
	EventSlug           string     `json:"eventSlug"`
	WillAttend          Attendance `json:"willAttend"`
	NumberOfGuests      int        `json:"numberOfGuests"`
	NumberOfKids        int        `json:"numberOfKids"`
	Phone               string     `json:"phone"`
	Email               string     `json:"email"`
	DietaryRestrictions string     `json:"dietaryRestrictions"`
	Message             string     `json:"message"`
	RSVPSide            Side       `json:"rsvpSide,omitempty"`
	Timestamp           string     `json:"timestamp"`
}

// Attending is shorthand for WillAttend == yes
func (s Submission) Attending() bool {
	return s.WillAttend == AttendanceYes
}
