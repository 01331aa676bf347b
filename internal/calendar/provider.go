package calendar

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

const (
	// NoTimeSelectedMessage is returned when a meeting has no selected option.
	NoTimeSelectedMessage = "No time selected yet"

	backendTimeout = 10 * time.Second
)

// Provider answers availability questions for a user. It prefers the live
// backend built from the user's stored credential and falls back to the
// synthetic one on any failure. None of its methods surface backend errors to
// the caller.
type Provider struct {
	credRepo  repository.CredentialRepository
	oauthCfg  *oauth2.Config
	synthetic *SyntheticBackend

	// newLive is swapped out in tests.
	newLive func(ctx context.Context, ts oauth2.TokenSource) (Backend, error)
}

// NewProvider wires a provider. rng drives the synthetic fallback; pass a
// seeded generator for deterministic behavior, nil for a time-seeded one.
func NewProvider(credRepo repository.CredentialRepository, oauthCfg *oauth2.Config, rng *rand.Rand) *Provider {
	return &Provider{
		credRepo:  credRepo,
		oauthCfg:  oauthCfg,
		synthetic: NewSyntheticBackend(rng),
		newLive:   NewLiveBackend,
	}
}

// backendFor returns a live backend for the user, or nil when the user is not
// connected, the token cannot be refreshed, or the client cannot be built.
// A failed refresh leaves the stored credential untouched.
func (p *Provider) backendFor(ctx context.Context, userID string) Backend {
	if p.credRepo == nil || p.oauthCfg == nil || p.oauthCfg.ClientID == "" {
		return nil
	}

	cred, err := p.credRepo.FindByUserID(ctx, userID)
	if err != nil || cred == nil {
		return nil
	}

	token := &oauth2.Token{AccessToken: cred.Token}
	if cred.RefreshToken != nil {
		token.RefreshToken = *cred.RefreshToken
	}
	if cred.Expiry != nil {
		token.Expiry = *cred.Expiry
	}

	ts := p.oauthCfg.TokenSource(ctx, token)
	fresh, err := ts.Token()
	if err != nil {
		// treat as not connected for this call; the credential may refresh
		// successfully next time
		log.Printf("[Calendar] token refresh failed for user %s: %v", userID, err)
		return nil
	}

	if fresh.AccessToken != cred.Token {
		cred.Token = fresh.AccessToken
		if fresh.RefreshToken != "" {
			cred.RefreshToken = &fresh.RefreshToken
		}
		if !fresh.Expiry.IsZero() {
			expiry := fresh.Expiry
			cred.Expiry = &expiry
		}
		if err := p.credRepo.UpdateTokens(ctx, cred); err != nil {
			log.Printf("[Calendar] failed to persist refreshed token for user %s: %v", userID, err)
		}
	}

	backend, err := p.newLive(ctx, oauth2.StaticTokenSource(fresh))
	if err != nil {
		log.Printf("[Calendar] failed to build live backend for user %s: %v", userID, err)
		return nil
	}
	return backend
}

// GetFreeBusy returns busy intervals in [start, end) from the user's primary
// calendar, or synthetic intervals when the live path is unavailable.
func (p *Provider) GetFreeBusy(ctx context.Context, userID string, start, end time.Time) []BusyInterval {
	if backend := p.backendFor(ctx, userID); backend != nil {
		callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		if busy, err := backend.FreeBusy(callCtx, start, end); err == nil {
			return busy
		}
	}
	busy, _ := p.synthetic.FreeBusy(ctx, start, end)
	return busy
}

// CreateEvent submits an event to the user's calendar. It never fails: any
// backend problem yields a mock success carrying the echoed inputs, so
// selecting a time never breaks on calendar trouble.
func (p *Provider) CreateEvent(ctx context.Context, userID string, event *Event) *EventResult {
	details := EventDetails{
		Title:       event.Title,
		Start:       event.Start.UTC().Format(time.RFC3339),
		End:         event.End.UTC().Format(time.RFC3339),
		Organizer:   event.Organizer,
		Attendees:   event.Attendees,
		Description: event.Description,
	}
	if details.Attendees == nil {
		details.Attendees = []string{}
	}

	if backend := p.backendFor(ctx, userID); backend != nil {
		callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		if eventID, err := backend.InsertEvent(callCtx, event); err == nil {
			return &EventResult{
				Status:  "success",
				EventID: eventID,
				Message: "Event created in Google Calendar",
				Details: details,
			}
		}
	}

	return &EventResult{
		Status:  "success",
		EventID: p.synthetic.MockEventID(),
		Message: "Event would be created in Google Calendar",
		Details: details,
	}
}

// CheckAvailabilityMessage renders a human-readable availability judgment for
// the meeting's selected window, in the given location.
func (p *Provider) CheckAvailabilityMessage(ctx context.Context, meeting *repository.MeetingRequest, loc *time.Location) string {
	selected := meeting.SelectedTime()
	if selected == nil {
		return NoTimeSelectedMessage
	}
	if loc == nil {
		loc = time.UTC
	}

	start := selected.StartTime.In(loc)
	end := selected.EndTime.In(loc)

	if backend := p.backendFor(ctx, meeting.OrganizerID); backend != nil {
		callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		if busy, err := backend.FreeBusy(callCtx, selected.StartTime, selected.EndTime); err == nil {
			if len(busy) == 0 {
				return fmt.Sprintf("✅ Your primary calendar appears free from %s to %s on %s",
					start.Format("15:04"), end.Format("15:04"), start.Format("2006-01-02"))
			}
			return fmt.Sprintf("⚠️ You have conflicts from %s to %s on %s",
				start.Format("15:04"), end.Format("15:04"), start.Format("2006-01-02"))
		}
	}

	// fallback keeps the same two message shapes, weighted ~70% free
	if p.synthetic.Chance(0.7) {
		return fmt.Sprintf("✅ All participants appear to be free from %s to %s on %s",
			start.Format("15:04"), end.Format("15:04"), start.Format("2006-01-02"))
	}
	return fmt.Sprintf("⚠️ Some participants may have conflicts from %s to %s on %s",
		start.Format("15:04"), end.Format("15:04"), start.Format("2006-01-02"))
}

// IsConnected reports whether the user has a stored credential at all. It
// does not validate or refresh the token.
func (p *Provider) IsConnected(ctx context.Context, userID string) bool {
	if p.credRepo == nil {
		return false
	}
	cred, err := p.credRepo.FindByUserID(ctx, userID)
	return err == nil && cred != nil
}

// ScopeList splits the stored space-separated scope string.
func ScopeList(scopes string) []string {
	return strings.Fields(scopes)
}
