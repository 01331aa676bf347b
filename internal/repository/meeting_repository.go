package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MeetingRequest is the aggregate root. Its TimeOptions are loaded separately
// (ascending by start time) and deleted by FK cascade.
type MeetingRequest struct {
	ID          string
	OrganizerID string
	Title       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	TimeOptions []*TimeOption
}

// HasSelectedTime reports whether any loaded option is selected.
func (m *MeetingRequest) HasSelectedTime() bool {
	return m.SelectedTime() != nil
}

// SelectedTime returns the selected option, or nil.
func (m *MeetingRequest) SelectedTime() *TimeOption {
	for _, opt := range m.TimeOptions {
		if opt.IsSelected {
			return opt
		}
	}
	return nil
}

type MeetingRequestRepository interface {
	Create(ctx context.Context, meeting *MeetingRequest) error
	FindByID(ctx context.Context, id string) (*MeetingRequest, error)
	FindByIDForOrganizer(ctx context.Context, id, organizerID string) (*MeetingRequest, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]*MeetingRequest, error)
	FindUnscheduledOlderThan(ctx context.Context, cutoff time.Time) ([]*MeetingRequest, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type pgMeetingRequestRepository struct {
	pool *pgxpool.Pool
}

func NewMeetingRequestRepository(pool *pgxpool.Pool) MeetingRequestRepository {
	return &pgMeetingRequestRepository{pool: pool}
}

func (r *pgMeetingRequestRepository) Create(ctx context.Context, meeting *MeetingRequest) error {
	query := `
		INSERT INTO meeting_requests (organizer_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		meeting.OrganizerID, meeting.Title, meeting.Description,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)
}

func (r *pgMeetingRequestRepository) FindByID(ctx context.Context, id string) (*MeetingRequest, error) {
	query := `
		SELECT id, organizer_id, title, description, created_at, updated_at
		FROM meeting_requests WHERE id = $1
	`
	m := &MeetingRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMeetingRequestRepository) FindByIDForOrganizer(ctx context.Context, id, organizerID string) (*MeetingRequest, error) {
	query := `
		SELECT id, organizer_id, title, description, created_at, updated_at
		FROM meeting_requests WHERE id = $1 AND organizer_id = $2
	`
	m := &MeetingRequest{}
	err := r.pool.QueryRow(ctx, query, id, organizerID).Scan(
		&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMeetingRequestRepository) FindByOrganizer(ctx context.Context, organizerID string) ([]*MeetingRequest, error) {
	query := `
		SELECT id, organizer_id, title, description, created_at, updated_at
		FROM meeting_requests WHERE organizer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*MeetingRequest
	for rows.Next() {
		m := &MeetingRequest{}
		if err := rows.Scan(
			&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *pgMeetingRequestRepository) FindUnscheduledOlderThan(ctx context.Context, cutoff time.Time) ([]*MeetingRequest, error) {
	query := `
		SELECT m.id, m.organizer_id, m.title, m.description, m.created_at, m.updated_at
		FROM meeting_requests m
		WHERE m.created_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM time_options o
			WHERE o.meeting_request_id = m.id AND o.is_selected
		  )
		ORDER BY m.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*MeetingRequest
	for rows.Next() {
		m := &MeetingRequest{}
		if err := rows.Scan(
			&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *pgMeetingRequestRepository) Touch(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE meeting_requests SET updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *pgMeetingRequestRepository) Delete(ctx context.Context, id string) error {
	// time_options go with it via ON DELETE CASCADE
	_, err := r.pool.Exec(ctx, `DELETE FROM meeting_requests WHERE id = $1`, id)
	return err
}
