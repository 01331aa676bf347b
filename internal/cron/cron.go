// Package cron runs the scheduled maintenance jobs.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aischeduler/scheduler-backend/internal/notification"
	"github.com/aischeduler/scheduler-backend/internal/repository"
)

const (
	reminderAge          = 24 * time.Hour
	notificationMaxAge   = 30 * 24 * time.Hour
	jobTimeout           = 2 * time.Minute
	reminderSchedule     = "0 9 * * *" // daily at 09:00
	cleanupSchedule      = "30 3 * * *"
	tokenSweeperSchedule = "0 * * * *" // hourly
)

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron             *cron.Cron
	meetingRepo      repository.MeetingRequestRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	notifSvc         *notification.Service
}

func NewScheduler(
	meetingRepo repository.MeetingRequestRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		meetingRepo:      meetingRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		notifSvc:         notifSvc,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(reminderSchedule, s.remindUnscheduledMeetings); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cleanupSchedule, s.purgeOldNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(tokenSweeperSchedule, s.sweepExpiredRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[Cron] ✅ Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Cron] Scheduler stopped")
}

// remindUnscheduledMeetings nudges organizers of meetings that have gone a
// day without a selected time.
func (s *Scheduler) remindUnscheduledMeetings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := time.Now().Add(-reminderAge)
	meetings, err := s.meetingRepo.FindUnscheduledOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Failed to find unscheduled meetings: %v", err)
		return
	}

	for _, meeting := range meetings {
		s.notifSvc.SendMeetingReminder(ctx, meeting.OrganizerID, meeting.ID, meeting.Title)
	}
	if len(meetings) > 0 {
		log.Printf("[Cron] Sent %d meeting reminder(s)", len(meetings))
	}
}

// purgeOldNotifications removes read notifications past the retention window.
func (s *Scheduler) purgeOldNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, time.Now().Add(-notificationMaxAge), true)
	if err != nil {
		log.Printf("[Cron] Failed to purge notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Purged %d old notification(s)", deleted)
	}
}

// sweepExpiredRefreshTokens deletes refresh tokens past their expiry.
func (s *Scheduler) sweepExpiredRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.userRepo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		log.Printf("[Cron] Failed to sweep refresh tokens: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Removed %d expired refresh token(s)", deleted)
	}
}
