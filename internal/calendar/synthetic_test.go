package calendar

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestSyntheticFreeBusyStaysInsideWindow(t *testing.T) {
	backend := NewSyntheticBackend(rand.New(rand.NewSource(1)))

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	for i := 0; i < 50; i++ {
		busy, err := backend.FreeBusy(context.Background(), start, end)
		if err != nil {
			t.Fatalf("FreeBusy returned error: %v", err)
		}
		for _, interval := range busy {
			if interval.Start.Before(start) {
				t.Errorf("interval starts before window: %v", interval.Start)
			}
			if interval.End.After(end) {
				t.Errorf("interval ends after window: %v", interval.End)
			}
			if !interval.End.After(interval.Start) {
				t.Errorf("interval end %v not after start %v", interval.End, interval.Start)
			}
			if interval.Status != "busy" {
				t.Errorf("unexpected status %q", interval.Status)
			}
		}
	}
}

func TestSyntheticFreeBusyDurations(t *testing.T) {
	backend := NewSyntheticBackend(rand.New(rand.NewSource(42)))

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	busy, err := backend.FreeBusy(context.Background(), start, end)
	if err != nil {
		t.Fatalf("FreeBusy returned error: %v", err)
	}
	if len(busy) == 0 {
		t.Fatal("expected some busy intervals over a 24h window")
	}
	for _, interval := range busy {
		d := interval.End.Sub(interval.Start)
		if d != time.Hour && d != 2*time.Hour {
			t.Errorf("interval duration %v, want 1h or 2h", d)
		}
		if interval.Start.Minute() != 0 || interval.Start.Second() != 0 {
			t.Errorf("interval not aligned to the hour: %v", interval.Start)
		}
	}
}

func TestSyntheticFreeBusyDeterministicWithSeed(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(12 * time.Hour)

	a, _ := NewSyntheticBackend(rand.New(rand.NewSource(7))).FreeBusy(context.Background(), start, end)
	b, _ := NewSyntheticBackend(rand.New(rand.NewSource(7))).FreeBusy(context.Background(), start, end)

	if len(a) != len(b) {
		t.Fatalf("same seed gave %d vs %d intervals", len(a), len(b))
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			t.Errorf("interval %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSyntheticFreeBusyEmptyWindow(t *testing.T) {
	backend := NewSyntheticBackend(rand.New(rand.NewSource(3)))

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	busy, err := backend.FreeBusy(context.Background(), start, start)
	if err != nil {
		t.Fatalf("FreeBusy returned error: %v", err)
	}
	if len(busy) != 0 {
		t.Errorf("empty window produced %d intervals", len(busy))
	}
}

func TestMockEventIDShape(t *testing.T) {
	backend := NewSyntheticBackend(rand.New(rand.NewSource(5)))

	for i := 0; i < 100; i++ {
		id := backend.MockEventID()
		if !strings.HasPrefix(id, "mock_event_") {
			t.Fatalf("unexpected id prefix: %q", id)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, "mock_event_"))
		if err != nil {
			t.Fatalf("non-numeric suffix in %q", id)
		}
		if n < 1000 || n > 9999 {
			t.Errorf("id number %d out of range", n)
		}
	}
}

func TestChanceBounds(t *testing.T) {
	backend := NewSyntheticBackend(rand.New(rand.NewSource(9)))

	for i := 0; i < 100; i++ {
		if backend.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
	}
	for i := 0; i < 100; i++ {
		if !backend.Chance(1.1) {
			t.Fatal("Chance(>1) returned false")
		}
	}
}
