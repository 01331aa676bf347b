package service

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/db"
	"github.com/aischeduler/scheduler-backend/internal/repository"
)

// ============================================
// A/B Test Service
// ============================================

// Homepage button-label experiment variants.
const (
	VariantKudos  = "kudos"
	VariantThanks = "thanks"
)

const variantCacheTTL = 30 * 24 * time.Hour

type AbTestService interface {
	// AssignVariant returns the session's sticky variant, dealing a fresh one
	// on first contact. A view event is recorded on every call.
	AssignVariant(ctx context.Context, sessionKey string) (string, error)
	RecordClick(ctx context.Context, sessionKey, userAgent, ipAddress string) (string, error)
	Stats(ctx context.Context) ([]*repository.AbTestVariantStats, error)
}

type abTestService struct {
	abtestRepo repository.AbTestRepository
	redis      *db.RedisDB

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAbTestService(abtestRepo repository.AbTestRepository, redis *db.RedisDB) AbTestService {
	return &abTestService{
		abtestRepo: abtestRepo,
		redis:      redis,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *abTestService) AssignVariant(ctx context.Context, sessionKey string) (string, error) {
	if sessionKey == "" {
		return "", ErrInvalidInput
	}

	variant, err := s.lookupVariant(ctx, sessionKey)
	if err != nil {
		return "", err
	}
	if variant == "" {
		variant = s.deal()
	}

	if err := s.abtestRepo.CreateViewEvent(ctx, &repository.AbTestEvent{
		SessionKey: sessionKey,
		Variant:    variant,
	}); err != nil {
		return "", err
	}

	s.cacheVariant(ctx, sessionKey, variant)
	return variant, nil
}

func (s *abTestService) RecordClick(ctx context.Context, sessionKey, userAgent, ipAddress string) (string, error) {
	if sessionKey == "" {
		return "", ErrInvalidInput
	}

	variant, err := s.lookupVariant(ctx, sessionKey)
	if err != nil {
		return "", err
	}
	if variant == "" {
		// Click without a prior view: deal and record so the click still counts.
		variant = s.deal()
		s.cacheVariant(ctx, sessionKey, variant)
	}

	if err := s.abtestRepo.CreateClickEvent(ctx, &repository.AbTestClickEvent{
		SessionKey: sessionKey,
		Variant:    variant,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
	}); err != nil {
		return "", err
	}
	return variant, nil
}

func (s *abTestService) Stats(ctx context.Context) ([]*repository.AbTestVariantStats, error) {
	return s.abtestRepo.Stats(ctx)
}

// lookupVariant checks the redis cache first, then falls back to the earliest
// recorded view event. Returns "" when the session is new.
func (s *abTestService) lookupVariant(ctx context.Context, sessionKey string) (string, error) {
	if s.redis != nil {
		if variant, err := s.redis.GetVariant(ctx, sessionKey); err == nil && variant != "" {
			return variant, nil
		}
	}
	return s.abtestRepo.FindVariantForSession(ctx, sessionKey)
}

func (s *abTestService) cacheVariant(ctx context.Context, sessionKey, variant string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetVariant(ctx, sessionKey, variant, variantCacheTTL); err != nil {
		log.Printf("[AbTest] Failed to cache variant for session %s: %v", sessionKey, err)
	}
}

func (s *abTestService) deal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Intn(2) == 0 {
		return VariantKudos
	}
	return VariantThanks
}
