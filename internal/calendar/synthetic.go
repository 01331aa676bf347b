package calendar

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SyntheticBackend fabricates availability data from random draws. It stands
// in for the live backend whenever a user has no usable credential or the
// real API errors. The output is a pure function of the injected generator,
// not of any calendar content.
type SyntheticBackend struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticBackend creates a backend driven by rng. Pass a seeded
// generator in tests for deterministic output; nil falls back to a
// time-seeded one.
func NewSyntheticBackend(rng *rand.Rand) *SyntheticBackend {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SyntheticBackend{rng: rng}
}

// FreeBusy partitions [start, end) into hourly buckets. Each bucket has a 30%
// chance of being busy for 1 or 2 hours; slots that would run past end are
// dropped so every interval stays inside the window.
func (b *SyntheticBackend) FreeBusy(_ context.Context, start, end time.Time) ([]BusyInterval, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var busy []BusyInterval
	for current := start; current.Before(end); current = current.Add(time.Hour) {
		if b.rng.Float64() >= 0.3 {
			continue
		}
		hours := 1 + b.rng.Intn(2)
		busyEnd := current.Add(time.Duration(hours) * time.Hour)
		if busyEnd.After(end) {
			continue
		}
		busy = append(busy, BusyInterval{
			Start:  current,
			End:    busyEnd,
			Status: "busy",
		})
	}
	return busy, nil
}

// InsertEvent never talks to anything; it hands back a generated identifier.
func (b *SyntheticBackend) InsertEvent(_ context.Context, _ *Event) (string, error) {
	return b.MockEventID(), nil
}

// MockEventID generates an identifier in the mock_event_<1000-9999> shape.
func (b *SyntheticBackend) MockEventID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("mock_event_%d", 1000+b.rng.Intn(9000))
}

// Chance returns true with probability p.
func (b *SyntheticBackend) Chance(p float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Float64() < p
}
