package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Homepage button-label experiment. A view event is written every time the
// experiment page renders; a click event every time the button is pressed.

type AbTestEvent struct {
	ID         int64
	SessionKey string
	Variant    string
	CreatedAt  time.Time
}

type AbTestClickEvent struct {
	ID         int64
	SessionKey string
	Variant    string
	UserAgent  string
	IPAddress  string
	CreatedAt  time.Time
}

type AbTestVariantStats struct {
	Variant string
	Views   int
	Clicks  int
}

type AbTestRepository interface {
	CreateViewEvent(ctx context.Context, event *AbTestEvent) error
	CreateClickEvent(ctx context.Context, event *AbTestClickEvent) error
	FindVariantForSession(ctx context.Context, sessionKey string) (string, error)
	Stats(ctx context.Context) ([]*AbTestVariantStats, error)
}

type pgAbTestRepository struct {
	pool *pgxpool.Pool
}

func NewAbTestRepository(pool *pgxpool.Pool) AbTestRepository {
	return &pgAbTestRepository{pool: pool}
}

func (r *pgAbTestRepository) CreateViewEvent(ctx context.Context, event *AbTestEvent) error {
	query := `
		INSERT INTO abtest_events (session_key, variant)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, event.SessionKey, event.Variant).
		Scan(&event.ID, &event.CreatedAt)
}

func (r *pgAbTestRepository) CreateClickEvent(ctx context.Context, event *AbTestClickEvent) error {
	query := `
		INSERT INTO abtest_click_events (session_key, variant, user_agent, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		event.SessionKey, event.Variant, event.UserAgent, event.IPAddress,
	).Scan(&event.ID, &event.CreatedAt)
}

// FindVariantForSession returns the variant of the session's earliest view
// event, or "" when the session has none. Keeps assignment sticky even when
// the redis cache is cold or disabled.
func (r *pgAbTestRepository) FindVariantForSession(ctx context.Context, sessionKey string) (string, error) {
	var variant string
	err := r.pool.QueryRow(ctx, `
		SELECT variant FROM abtest_events
		WHERE session_key = $1
		ORDER BY created_at ASC LIMIT 1
	`, sessionKey).Scan(&variant)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return variant, nil
}

func (r *pgAbTestRepository) Stats(ctx context.Context) ([]*AbTestVariantStats, error) {
	query := `
		SELECT v.variant,
		       COALESCE(views.n, 0) AS views,
		       COALESCE(clicks.n, 0) AS clicks
		FROM (SELECT DISTINCT variant FROM abtest_events) v
		LEFT JOIN (
			SELECT variant, COUNT(*) AS n FROM abtest_events GROUP BY variant
		) views ON views.variant = v.variant
		LEFT JOIN (
			SELECT variant, COUNT(*) AS n FROM abtest_click_events GROUP BY variant
		) clicks ON clicks.variant = v.variant
		ORDER BY v.variant
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*AbTestVariantStats
	for rows.Next() {
		s := &AbTestVariantStats{}
		if err := rows.Scan(&s.Variant, &s.Views, &s.Clicks); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
