package service

import (
	"errors"

	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/config"
	"github.com/aischeduler/scheduler-backend/internal/db"
	"github.com/aischeduler/scheduler-backend/internal/email"
	"github.com/aischeduler/scheduler-backend/internal/notification"
	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Meeting      MeetingService
	Notification NotificationService
	AbTest       AbTestService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Calendar    *calendar.Provider
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo),
		Meeting: NewMeetingService(
			deps.Repos.MeetingRepo,
			deps.Repos.TimeOptionRepo,
			deps.Repos.UserRepo,
			deps.Calendar,
			deps.NotifSvc,
			deps.EmailSvc,
			deps.Broadcaster,
		),
		Notification: NewNotificationService(deps.Repos.NotificationRepo, deps.Broadcaster),
		AbTest:       NewAbTestService(deps.Repos.AbTestRepo, deps.Redis),
	}
}
