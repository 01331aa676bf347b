package service

import (
	"context"

	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/socket"
)

// ============================================
// Notification Service
// ============================================

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error)
	Count(ctx context.Context, userID string) (total int, unread int, err error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broadcaster *socket.Broadcaster) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error) {
	return s.notificationRepo.FindByUserID(ctx, userID, unreadOnly)
}

func (s *notificationService) Count(ctx context.Context, userID string) (int, int, error) {
	return s.notificationRepo.CountByUserID(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.notificationRepo.Delete(ctx, notificationID); err != nil {
		return err
	}
	s.pushCount(ctx, userID)
	return nil
}

// pushCount keeps connected clients' unread badge in sync after any change.
func (s *notificationService) pushCount(ctx context.Context, userID string) {
	if s.broadcaster == nil {
		return
	}
	total, unread, err := s.notificationRepo.CountByUserID(ctx, userID)
	if err != nil {
		return
	}
	s.broadcaster.SendNotificationCount(userID, total, unread)
}
