package notifications

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"weddingrsvp/internal/events"
)

const (
	calendarBaseURL    = "https://calendar.google.com/calendar/render?"
	calendarTimeLayout = "20060102T150405"
	calendarDayLayout  = "20060102"
	defaultEventLength = 3 * time.Hour
)

var clockPattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*([AP]M)`)

// clock is a wall-clock time of day, as minutes since midnight
type clock int

// parseClocks returns every "H:MM AM/PM" token in s, in order
func parseClocks(s string) []clock {
	var out []clock
	for _, m := range clockPattern.FindAllStringSubmatch(s, -1) {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		pm := strings.EqualFold(m[3], "PM")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		out = append(out, clock(h*60+mins))
	}
	return out
}

// calendarDates builds the Google Calendar "dates" parameter for an event.
// Two times give start/end; one time gives a three hour block; none gives an all-day event.
// Ends that fall at or before the start roll over to the next day.
func calendarDates(ev events.Event) string {
	day, err := ev.Day(time.UTC)
	if err != nil {
		return ""
	}

	clocks := parseClocks(ev.Time)
	if len(clocks) == 0 {
		return day.Format(calendarDayLayout) + "/" + day.AddDate(0, 0, 1).Format(calendarDayLayout)
	}

	start := day.Add(time.Duration(clocks[0]) * time.Minute)
	end := start.Add(defaultEventLength)
	if len(clocks) >= 2 {
		end = day.Add(time.Duration(clocks[1]) * time.Minute)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
	}

	return start.Format(calendarTimeLayout) + "/" + end.Format(calendarTimeLayout)
}

// CalendarLink returns an "add to Google Calendar" URL for the event.
// Times are wall-clock times in tz.
func CalendarLink(ev events.Event, coupleName, tz string) string {
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", ev.Title+" — "+coupleName+"'s Wedding")
	params.Set("dates", calendarDates(ev))
	params.Set("details", ev.Description)
	params.Set("location", ev.Venue+", "+ev.VenueAddress)
	params.Set("ctz", tz)
	return calendarBaseURL + params.Encode()
}
