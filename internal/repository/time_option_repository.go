package repository

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeOption struct {
	ID               string
	MeetingRequestID string
	StartTime        time.Time
	EndTime          time.Time
	IsSelected       bool
	CreatedAt        time.Time
}

// DurationMinutes is the option length rounded to whole minutes.
func (o *TimeOption) DurationMinutes() int {
	return int(math.Round(o.EndTime.Sub(o.StartTime).Minutes()))
}

type TimeOptionRepository interface {
	Create(ctx context.Context, option *TimeOption) error
	FindByID(ctx context.Context, id string) (*TimeOption, error)
	FindByMeeting(ctx context.Context, meetingID string) ([]*TimeOption, error)
	FindSelectedByMeeting(ctx context.Context, meetingID string) (*TimeOption, error)
	// Select marks the target option selected and clears every sibling in a
	// single transaction. Returns nil, nil when the option does not belong
	// to the meeting.
	Select(ctx context.Context, meetingID, optionID string) (*TimeOption, error)
	CountByMeeting(ctx context.Context, meetingID string) (int, error)
}

type pgTimeOptionRepository struct {
	pool *pgxpool.Pool
}

func NewTimeOptionRepository(pool *pgxpool.Pool) TimeOptionRepository {
	return &pgTimeOptionRepository{pool: pool}
}

func (r *pgTimeOptionRepository) Create(ctx context.Context, option *TimeOption) error {
	query := `
		INSERT INTO time_options (meeting_request_id, start_time, end_time, is_selected)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		option.MeetingRequestID, option.StartTime, option.EndTime, option.IsSelected,
	).Scan(&option.ID, &option.CreatedAt)
}

func (r *pgTimeOptionRepository) FindByID(ctx context.Context, id string) (*TimeOption, error) {
	query := `
		SELECT id, meeting_request_id, start_time, end_time, is_selected, created_at
		FROM time_options WHERE id = $1
	`
	opt := &TimeOption{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&opt.ID, &opt.MeetingRequestID, &opt.StartTime, &opt.EndTime, &opt.IsSelected, &opt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return opt, nil
}

func (r *pgTimeOptionRepository) FindByMeeting(ctx context.Context, meetingID string) ([]*TimeOption, error) {
	query := `
		SELECT id, meeting_request_id, start_time, end_time, is_selected, created_at
		FROM time_options WHERE meeting_request_id = $1
		ORDER BY start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []*TimeOption
	for rows.Next() {
		opt := &TimeOption{}
		if err := rows.Scan(
			&opt.ID, &opt.MeetingRequestID, &opt.StartTime, &opt.EndTime, &opt.IsSelected, &opt.CreatedAt,
		); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (r *pgTimeOptionRepository) FindSelectedByMeeting(ctx context.Context, meetingID string) (*TimeOption, error) {
	query := `
		SELECT id, meeting_request_id, start_time, end_time, is_selected, created_at
		FROM time_options WHERE meeting_request_id = $1 AND is_selected
	`
	opt := &TimeOption{}
	err := r.pool.QueryRow(ctx, query, meetingID).Scan(
		&opt.ID, &opt.MeetingRequestID, &opt.StartTime, &opt.EndTime, &opt.IsSelected, &opt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return opt, nil
}

func (r *pgTimeOptionRepository) Select(ctx context.Context, meetingID, optionID string) (*TimeOption, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Clear siblings first; the partial unique index would reject two
	// selected rows if this order were ever violated.
	if _, err := tx.Exec(ctx, `
		UPDATE time_options SET is_selected = FALSE
		WHERE meeting_request_id = $1 AND is_selected AND id <> $2
	`, meetingID, optionID); err != nil {
		return nil, err
	}

	opt := &TimeOption{}
	err = tx.QueryRow(ctx, `
		UPDATE time_options SET is_selected = TRUE
		WHERE id = $1 AND meeting_request_id = $2
		RETURNING id, meeting_request_id, start_time, end_time, is_selected, created_at
	`, optionID, meetingID).Scan(
		&opt.ID, &opt.MeetingRequestID, &opt.StartTime, &opt.EndTime, &opt.IsSelected, &opt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		// option missing or belongs to another meeting; nothing committed
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return opt, nil
}

func (r *pgTimeOptionRepository) CountByMeeting(ctx context.Context, meetingID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM time_options WHERE meeting_request_id = $1`, meetingID,
	).Scan(&count)
	return count, err
}
