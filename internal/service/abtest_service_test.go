package service

import (
	"context"
	"testing"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

type memAbTestRepo struct {
	views  []*repository.AbTestEvent
	clicks []*repository.AbTestClickEvent
}

func (r *memAbTestRepo) CreateViewEvent(_ context.Context, e *repository.AbTestEvent) error {
	r.views = append(r.views, e)
	return nil
}

func (r *memAbTestRepo) CreateClickEvent(_ context.Context, e *repository.AbTestClickEvent) error {
	r.clicks = append(r.clicks, e)
	return nil
}

func (r *memAbTestRepo) FindVariantForSession(_ context.Context, sessionKey string) (string, error) {
	for _, e := range r.views {
		if e.SessionKey == sessionKey {
			return e.Variant, nil
		}
	}
	return "", nil
}

func (r *memAbTestRepo) Stats(_ context.Context) ([]*repository.AbTestVariantStats, error) {
	byVariant := map[string]*repository.AbTestVariantStats{}
	for _, e := range r.views {
		if byVariant[e.Variant] == nil {
			byVariant[e.Variant] = &repository.AbTestVariantStats{Variant: e.Variant}
		}
		byVariant[e.Variant].Views++
	}
	for _, e := range r.clicks {
		if byVariant[e.Variant] == nil {
			byVariant[e.Variant] = &repository.AbTestVariantStats{Variant: e.Variant}
		}
		byVariant[e.Variant].Clicks++
	}
	var out []*repository.AbTestVariantStats
	for _, s := range byVariant {
		out = append(out, s)
	}
	return out, nil
}

func TestAssignVariantIsSticky(t *testing.T) {
	repo := &memAbTestRepo{}
	svc := NewAbTestService(repo, nil)

	first, err := svc.AssignVariant(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	if first != VariantKudos && first != VariantThanks {
		t.Fatalf("unexpected variant %q", first)
	}

	for i := 0; i < 20; i++ {
		got, err := svc.AssignVariant(context.Background(), "session-1")
		if err != nil {
			t.Fatalf("AssignVariant: %v", err)
		}
		if got != first {
			t.Fatalf("variant flipped from %q to %q", first, got)
		}
	}
	if len(repo.views) != 21 {
		t.Errorf("every call must record a view, got %d", len(repo.views))
	}
}

func TestAssignVariantRequiresSession(t *testing.T) {
	svc := NewAbTestService(&memAbTestRepo{}, nil)
	if _, err := svc.AssignVariant(context.Background(), ""); err != ErrInvalidInput {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestRecordClickMatchesViewVariant(t *testing.T) {
	repo := &memAbTestRepo{}
	svc := NewAbTestService(repo, nil)

	assigned, _ := svc.AssignVariant(context.Background(), "session-1")

	clicked, err := svc.RecordClick(context.Background(), "session-1", "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("RecordClick: %v", err)
	}
	if clicked != assigned {
		t.Errorf("click variant %q, view variant %q", clicked, assigned)
	}
	if len(repo.clicks) != 1 {
		t.Fatalf("got %d click events", len(repo.clicks))
	}
	if repo.clicks[0].UserAgent != "test-agent" || repo.clicks[0].IPAddress != "127.0.0.1" {
		t.Errorf("click metadata not recorded: %+v", repo.clicks[0])
	}
}

func TestRecordClickWithoutPriorView(t *testing.T) {
	repo := &memAbTestRepo{}
	svc := NewAbTestService(repo, nil)

	variant, err := svc.RecordClick(context.Background(), "cold-session", "", "")
	if err != nil {
		t.Fatalf("RecordClick: %v", err)
	}
	if variant != VariantKudos && variant != VariantThanks {
		t.Errorf("unexpected variant %q", variant)
	}
}

func TestStatsAggregation(t *testing.T) {
	repo := &memAbTestRepo{}
	svc := NewAbTestService(repo, nil)

	svc.AssignVariant(context.Background(), "s1")
	svc.AssignVariant(context.Background(), "s1")
	svc.RecordClick(context.Background(), "s1", "", "")

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d variants, want 1", len(stats))
	}
	if stats[0].Views != 2 || stats[0].Clicks != 1 {
		t.Errorf("got views=%d clicks=%d", stats[0].Views, stats[0].Clicks)
	}
}
