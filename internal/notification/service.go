package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/socket"
)

// Notification types
const (
	TypeMeetingCreated  = "MEETING_CREATED"
	TypeTimeSelected    = "TIME_SELECTED"
	TypeMeetingReminder = "MEETING_REMINDER"
)

// Service handles sending in-app notifications. Every send path is
// best-effort: failures are logged, never returned to the user flow.
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// sendWebSocketNotification pushes a stored notification over the hub
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.UserID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

func (s *Service) create(ctx context.Context, n *repository.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("[Notification] Failed to store %s for user %s: %v", n.Type, n.UserID, err)
		return
	}
	s.sendWebSocketNotification(n)
}

// SendMeetingCreated notifies the organizer that their meeting request exists
func (s *Service) SendMeetingCreated(ctx context.Context, userID, meetingID, title string, optionCount int) {
	if userID == "" {
		return
	}
	s.create(ctx, &repository.Notification{
		UserID:  userID,
		Type:    TypeMeetingCreated,
		Title:   "Meeting created",
		Message: fmt.Sprintf("Your meeting '%s' was created with %d proposed time option(s)", title, optionCount),
		Data: map[string]interface{}{
			"meetingId": meetingID,
		},
	})
}

// SendTimeSelected notifies the organizer that a final time was picked
func (s *Service) SendTimeSelected(ctx context.Context, userID, meetingID, title string, start, end time.Time) {
	if userID == "" {
		return
	}
	s.create(ctx, &repository.Notification{
		UserID:  userID,
		Type:    TypeTimeSelected,
		Title:   "Time selected",
		Message: fmt.Sprintf("Final time for '%s': %s to %s", title, start.Format("2006-01-02 15:04"), end.Format("15:04")),
		Data: map[string]interface{}{
			"meetingId": meetingID,
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
		},
	})
}

// SendMeetingReminder nudges the organizer about a meeting still missing a
// selected time
func (s *Service) SendMeetingReminder(ctx context.Context, userID, meetingID, title string) {
	if userID == "" {
		return
	}
	s.create(ctx, &repository.Notification{
		UserID:  userID,
		Type:    TypeMeetingReminder,
		Title:   "Meeting needs a time",
		Message: fmt.Sprintf("Your meeting '%s' still has no selected time", title),
		Data: map[string]interface{}{
			"meetingId": meetingID,
		},
	})
}
