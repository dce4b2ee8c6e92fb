package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// MaxEventsPerDay caps how many events a day query returns.
const MaxEventsPerDay = 10

// EventLister lists a calendar's events for one UTC day.
type EventLister interface {
	ListDay(ctx context.Context, calendarID string, day time.Time) ([]*calendar.Event, error)
}

// EventInserter creates a calendar event.
type EventInserter interface {
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
}

// DayWindow returns the UTC day window [00:00:00, +24h) containing day.
func DayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// FormatEventLine renders one display line for an event. Events without
// a timed or all-day start fall back to "Unknown time".
func FormatEventLine(event *calendar.Event) string {
	start := "Unknown time"
	if event.Start != nil {
		switch {
		case event.Start.DateTime != "":
			start = event.Start.DateTime
		case event.Start.Date != "":
			start = event.Start.Date
		}
	}
	return fmt.Sprintf("%s at %s", event.Summary, start)
}
