package calendar

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

type fakeCredRepo struct {
	cred    *repository.GoogleOAuthCredential
	findErr error
	deleted bool
	updated bool
}

func (f *fakeCredRepo) Upsert(_ context.Context, cred *repository.GoogleOAuthCredential) error {
	f.cred = cred
	return nil
}

func (f *fakeCredRepo) FindByUserID(_ context.Context, _ string) (*repository.GoogleOAuthCredential, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.cred, nil
}

func (f *fakeCredRepo) UpdateTokens(_ context.Context, _ *repository.GoogleOAuthCredential) error {
	f.updated = true
	return nil
}

func (f *fakeCredRepo) DeleteByUserID(_ context.Context, _ string) error {
	f.deleted = true
	f.cred = nil
	return nil
}

type fakeBackend struct {
	busy      []BusyInterval
	busyErr   error
	eventID   string
	insertErr error
	inserted  *Event
}

func (f *fakeBackend) FreeBusy(_ context.Context, _, _ time.Time) ([]BusyInterval, error) {
	return f.busy, f.busyErr
}

func (f *fakeBackend) InsertEvent(_ context.Context, event *Event) (string, error) {
	f.inserted = event
	return f.eventID, f.insertErr
}

func testOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
}

// connectedCred has no expiry so the token source hands it back without a
// refresh round trip.
func connectedCred() *repository.GoogleOAuthCredential {
	return &repository.GoogleOAuthCredential{
		UserID: "user-1",
		Token:  "access-token",
	}
}

func newTestProvider(credRepo repository.CredentialRepository, backend Backend, liveErr error) (*Provider, *int) {
	p := NewProvider(credRepo, testOAuthConfig(), rand.New(rand.NewSource(1)))
	calls := 0
	p.newLive = func(_ context.Context, _ oauth2.TokenSource) (Backend, error) {
		calls++
		if liveErr != nil {
			return nil, liveErr
		}
		return backend, nil
	}
	return p, &calls
}

func TestGetFreeBusyUsesLiveBackend(t *testing.T) {
	want := []BusyInterval{{
		Start:  time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
		Status: "busy",
	}}
	backend := &fakeBackend{busy: want}
	p, calls := newTestProvider(&fakeCredRepo{cred: connectedCred()}, backend, nil)

	busy := p.GetFreeBusy(context.Background(), "user-1", want[0].Start.Add(-time.Hour), want[0].End.Add(time.Hour))
	if *calls != 1 {
		t.Fatalf("live backend built %d times, want 1", *calls)
	}
	if len(busy) != 1 || !busy[0].Start.Equal(want[0].Start) {
		t.Errorf("got %v, want %v", busy, want)
	}
}

func TestGetFreeBusyFallsBackWhenNotConnected(t *testing.T) {
	p, calls := newTestProvider(&fakeCredRepo{}, nil, nil)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	busy := p.GetFreeBusy(context.Background(), "user-1", start, end)

	if *calls != 0 {
		t.Fatalf("live backend built for unconnected user")
	}
	for _, interval := range busy {
		if interval.Start.Before(start) || interval.End.After(end) {
			t.Errorf("synthetic interval %v outside window", interval)
		}
	}
}

func TestGetFreeBusyFallsBackOnLiveError(t *testing.T) {
	backend := &fakeBackend{busyErr: errors.New("api down")}
	p, _ := newTestProvider(&fakeCredRepo{cred: connectedCred()}, backend, nil)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	busy := p.GetFreeBusy(context.Background(), "user-1", start, end)

	// synthetic output is the only acceptable result; it never escapes the
	// window even when the live call failed
	for _, interval := range busy {
		if interval.Start.Before(start) || interval.End.After(end) {
			t.Errorf("fallback interval %v outside window", interval)
		}
	}
}

func TestGetFreeBusyFallsBackWhenLiveBuildFails(t *testing.T) {
	p, calls := newTestProvider(&fakeCredRepo{cred: connectedCred()}, nil, errors.New("no transport"))

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	p.GetFreeBusy(context.Background(), "user-1", start, start.Add(time.Hour))

	if *calls != 1 {
		t.Fatalf("expected one live build attempt, got %d", *calls)
	}
}

func TestCreateEventLiveSuccess(t *testing.T) {
	backend := &fakeBackend{eventID: "real-event-123"}
	p, _ := newTestProvider(&fakeCredRepo{cred: connectedCred()}, backend, nil)

	event := &Event{
		Title:     "Planning sync",
		Start:     time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC),
		Organizer: "demo@ai-scheduler.app",
	}
	result := p.CreateEvent(context.Background(), "user-1", event)

	if result.Status != "success" {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.EventID != "real-event-123" {
		t.Errorf("event id = %q", result.EventID)
	}
	if result.Message != "Event created in Google Calendar" {
		t.Errorf("message = %q", result.Message)
	}
	if result.Details.Title != event.Title || result.Details.Organizer != event.Organizer {
		t.Errorf("details do not echo the request: %+v", result.Details)
	}
	if backend.inserted == nil {
		t.Error("backend never received the event")
	}
}

func TestCreateEventNeverFails(t *testing.T) {
	cases := []struct {
		name    string
		repo    *fakeCredRepo
		backend *fakeBackend
		liveErr error
	}{
		{"no credential", &fakeCredRepo{}, nil, nil},
		{"credential lookup error", &fakeCredRepo{findErr: errors.New("db down")}, nil, nil},
		{"live build fails", &fakeCredRepo{cred: connectedCred()}, nil, errors.New("no transport")},
		{"insert fails", &fakeCredRepo{cred: connectedCred()}, &fakeBackend{insertErr: errors.New("quota")}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newTestProvider(tc.repo, tc.backend, tc.liveErr)
			result := p.CreateEvent(context.Background(), "user-1", &Event{
				Title: "Planning sync",
				Start: time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC),
			})

			if result.Status != "success" {
				t.Errorf("status = %q, want success", result.Status)
			}
			if !strings.HasPrefix(result.EventID, "mock_event_") {
				t.Errorf("event id = %q, want mock_event_ prefix", result.EventID)
			}
			if result.Message != "Event would be created in Google Calendar" {
				t.Errorf("message = %q", result.Message)
			}
			if result.Details.Attendees == nil {
				t.Error("details attendees should be an empty slice, not nil")
			}
		})
	}
}

func TestCheckAvailabilityMessageNoSelection(t *testing.T) {
	p, _ := newTestProvider(&fakeCredRepo{}, nil, nil)

	meeting := &repository.MeetingRequest{OrganizerID: "user-1"}
	got := p.CheckAvailabilityMessage(context.Background(), meeting, time.UTC)
	if got != NoTimeSelectedMessage {
		t.Errorf("got %q, want %q", got, NoTimeSelectedMessage)
	}
}

func TestCheckAvailabilityMessageLive(t *testing.T) {
	selected := &repository.TimeOption{
		StartTime:  time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC),
		IsSelected: true,
	}
	meeting := &repository.MeetingRequest{
		OrganizerID: "user-1",
		TimeOptions: []*repository.TimeOption{selected},
	}

	t.Run("free", func(t *testing.T) {
		p, _ := newTestProvider(&fakeCredRepo{cred: connectedCred()}, &fakeBackend{}, nil)
		got := p.CheckAvailabilityMessage(context.Background(), meeting, time.UTC)
		want := "✅ Your primary calendar appears free from 14:00 to 15:00 on 2026-09-02"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		backend := &fakeBackend{busy: []BusyInterval{{Start: selected.StartTime, End: selected.EndTime, Status: "busy"}}}
		p, _ := newTestProvider(&fakeCredRepo{cred: connectedCred()}, backend, nil)
		got := p.CheckAvailabilityMessage(context.Background(), meeting, time.UTC)
		want := "⚠️ You have conflicts from 14:00 to 15:00 on 2026-09-02"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("fallback shapes", func(t *testing.T) {
		p, _ := newTestProvider(&fakeCredRepo{}, nil, nil)
		got := p.CheckAvailabilityMessage(context.Background(), meeting, time.UTC)
		free := strings.HasPrefix(got, "✅ All participants appear to be free")
		conflict := strings.HasPrefix(got, "⚠️ Some participants may have conflicts")
		if !free && !conflict {
			t.Errorf("unexpected fallback message %q", got)
		}
	})
}

func TestCheckAvailabilityMessageUsesLocation(t *testing.T) {
	selected := &repository.TimeOption{
		StartTime:  time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC),
		IsSelected: true,
	}
	meeting := &repository.MeetingRequest{
		OrganizerID: "user-1",
		TimeOptions: []*repository.TimeOption{selected},
	}

	loc := time.FixedZone("UTC+2", 2*3600)
	p, _ := newTestProvider(&fakeCredRepo{cred: connectedCred()}, &fakeBackend{}, nil)
	got := p.CheckAvailabilityMessage(context.Background(), meeting, loc)
	if !strings.Contains(got, "16:00 to 17:00") {
		t.Errorf("message not rendered in request timezone: %q", got)
	}
}

func TestFailedRefreshKeepsStoredCredential(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	rt := "refresh-token"
	repo := &fakeCredRepo{cred: &repository.GoogleOAuthCredential{
		UserID:       "user-1",
		Token:        "stale-token",
		RefreshToken: &rt,
		Expiry:       &expired,
	}}
	// empty token endpoint makes the refresh attempt fail immediately
	p, calls := newTestProvider(repo, &fakeBackend{}, nil)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	busy := p.GetFreeBusy(context.Background(), "user-1", start, start.Add(4*time.Hour))

	if *calls != 0 {
		t.Error("live backend built despite failed refresh")
	}
	for _, interval := range busy {
		if interval.Start.Before(start) {
			t.Errorf("fallback interval %v outside window", interval)
		}
	}
	if repo.updated {
		t.Error("failed refresh must not rewrite the stored credential")
	}
	if repo.deleted || repo.cred == nil {
		t.Error("failed refresh must not remove the stored credential")
	}
}

func TestIsConnected(t *testing.T) {
	repo := &fakeCredRepo{cred: connectedCred()}
	p, _ := newTestProvider(repo, nil, nil)

	if !p.IsConnected(context.Background(), "user-1") {
		t.Error("expected connected")
	}
	repo.cred = nil
	if p.IsConnected(context.Background(), "user-1") {
		t.Error("expected disconnected")
	}
}

func TestScopeList(t *testing.T) {
	got := ScopeList("a b  c")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("got %v", got)
	}
	if len(ScopeList("")) != 0 {
		t.Error("empty scopes should yield empty list")
	}
}
