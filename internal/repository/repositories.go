package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	MeetingRepo      MeetingRequestRepository
	TimeOptionRepo   TimeOptionRepository
	CredentialRepo   CredentialRepository
	NotificationRepo NotificationRepository
	AbTestRepo       AbTestRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		MeetingRepo:      NewMeetingRequestRepository(pool),
		TimeOptionRepo:   NewTimeOptionRepository(pool),
		CredentialRepo:   NewCredentialRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
		AbTestRepo:       NewAbTestRepository(pool),
	}
}
