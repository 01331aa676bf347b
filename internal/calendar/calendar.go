// Package calendar answers availability questions for a user, preferring the
// user's connected Google Calendar and degrading to synthetic data whenever
// the live backend cannot be reached.
package calendar

import (
	"context"
	"time"
)

// BusyInterval is a [start, end) window during which a user is unavailable.
type BusyInterval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
}

// Event is the backend-neutral event to create on a calendar.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Organizer   string
	Attendees   []string
}

// EventResult is what callers get back from CreateEvent. Status is always
// "success"; a mock result is only distinguishable by the event id shape.
type EventResult struct {
	Status  string       `json:"status"`
	EventID string       `json:"event_id"`
	Message string       `json:"message"`
	Details EventDetails `json:"details"`
}

// EventDetails echoes the request so the caller can render a confirmation.
type EventDetails struct {
	Title       string   `json:"title"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Organizer   string   `json:"organizer"`
	Attendees   []string `json:"attendees"`
	Description string   `json:"description"`
}

// Backend is the capability the provider needs from any calendar
// implementation, live or synthetic.
type Backend interface {
	FreeBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error)
	InsertEvent(ctx context.Context, event *Event) (string, error)
}
