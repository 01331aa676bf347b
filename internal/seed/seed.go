// Package seed provisions development fixtures.
package seed

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

// Run inserts a demo user with one sample meeting when the database is empty
// of them. Safe to call on every boot; existing rows are left alone.
func Run(ctx context.Context, repos *repository.Repositories) error {
	user, err := repos.UserRepo.FindByEmail(ctx, "demo@ai-scheduler.app")
	if err != nil {
		return err
	}
	if user == nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user = &repository.User{
			Email:    "demo@ai-scheduler.app",
			Password: string(hashed),
			Name:     "Demo User",
		}
		if err := repos.UserRepo.Create(ctx, user); err != nil {
			return err
		}
		log.Printf("[Seed] ✅ Created demo user %s", user.Email)
	}

	meetings, err := repos.MeetingRepo.FindByOrganizer(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(meetings) > 0 {
		return nil
	}

	desc := "Walk through the quarterly planning draft"
	meeting := &repository.MeetingRequest{
		OrganizerID: user.ID,
		Title:       "Quarterly planning sync",
		Description: &desc,
	}
	if err := repos.MeetingRepo.Create(ctx, meeting); err != nil {
		return err
	}

	base := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	slots := []struct{ start, end time.Time }{
		{base, base.Add(time.Hour)},
		{base.Add(24 * time.Hour), base.Add(24*time.Hour + 30*time.Minute)},
	}
	for _, slot := range slots {
		option := &repository.TimeOption{
			MeetingRequestID: meeting.ID,
			StartTime:        slot.start.UTC(),
			EndTime:          slot.end.UTC(),
		}
		if err := repos.TimeOptionRepo.Create(ctx, option); err != nil {
			return err
		}
	}

	log.Printf("[Seed] ✅ Created sample meeting %q with %d time options", meeting.Title, len(slots))
	return nil
}
