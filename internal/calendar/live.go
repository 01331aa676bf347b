package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// LiveBackend talks to the Google Calendar API for the user's primary
// calendar.
type LiveBackend struct {
	svc *gcal.Service
}

// NewLiveBackend builds a calendar client from an authenticated token source.
func NewLiveBackend(ctx context.Context, ts oauth2.TokenSource) (Backend, error) {
	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &LiveBackend{svc: svc}, nil
}

func (b *LiveBackend) FreeBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: "primary"}},
	}
	resp, err := b.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	primary, ok := resp.Calendars["primary"]
	if !ok {
		return nil, nil
	}

	var busy []BusyInterval
	for _, period := range primary.Busy {
		s, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("bad busy start %q: %w", period.Start, err)
		}
		e, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("bad busy end %q: %w", period.End, err)
		}
		busy = append(busy, BusyInterval{Start: s, End: e, Status: "busy"})
	}
	return busy, nil
}

func (b *LiveBackend) InsertEvent(ctx context.Context, event *Event) (string, error) {
	attendees := make([]*gcal.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	gev := &gcal.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: attendees,
	}

	created, err := b.svc.Events.Insert("primary", gev).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("event insert failed: %w", err)
	}
	return created.Id, nil
}
