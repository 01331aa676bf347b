package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/email"
	"github.com/aischeduler/scheduler-backend/internal/notification"
	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/socket"
)

// TimeSlotInput is one candidate slot as submitted by the client. Bounds are
// RFC 3339 strings; unparsable or inverted slots are skipped, not rejected,
// so a batch partially succeeds.
type TimeSlotInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type MeetingService interface {
	// CreateMeeting persists the aggregate root plus every valid candidate
	// slot. Invalid slots are dropped silently; the returned meeting carries
	// the options that made it in.
	CreateMeeting(ctx context.Context, organizerID, title, description string, slots []TimeSlotInput, loc *time.Location) (*repository.MeetingRequest, error)
	GetMeeting(ctx context.Context, meetingID, organizerID string) (*repository.MeetingRequest, error)
	ListMeetings(ctx context.Context, organizerID string) ([]*repository.MeetingRequest, error)
	// AddTimeOption returns nil, nil when the window is invalid (end <= start).
	AddTimeOption(ctx context.Context, meetingID, organizerID string, start, end time.Time) (*repository.TimeOption, error)
	// SelectTime marks one option as the final choice. Exactly one option of
	// the meeting is selected afterwards; the previous selection, if any, is
	// cleared in the same transaction.
	SelectTime(ctx context.Context, meetingID, optionID, organizerID string, loc *time.Location) (*repository.TimeOption, *calendar.EventResult, error)
	DeleteMeeting(ctx context.Context, meetingID, organizerID string) error
	AvailabilityMessage(ctx context.Context, meetingID, organizerID string, loc *time.Location) (string, error)
}

type meetingService struct {
	meetingRepo repository.MeetingRequestRepository
	optionRepo  repository.TimeOptionRepository
	userRepo    repository.UserRepository
	calendar    *calendar.Provider
	notifSvc    *notification.Service
	emailSvc    *email.Service
	broadcaster *socket.Broadcaster
}

func NewMeetingService(
	meetingRepo repository.MeetingRequestRepository,
	optionRepo repository.TimeOptionRepository,
	userRepo repository.UserRepository,
	calendarProvider *calendar.Provider,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) MeetingService {
	return &meetingService{
		meetingRepo: meetingRepo,
		optionRepo:  optionRepo,
		userRepo:    userRepo,
		calendar:    calendarProvider,
		notifSvc:    notifSvc,
		emailSvc:    emailSvc,
		broadcaster: broadcaster,
	}
}

func (s *meetingService) CreateMeeting(ctx context.Context, organizerID, title, description string, slots []TimeSlotInput, loc *time.Location) (*repository.MeetingRequest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	meeting := &repository.MeetingRequest{
		OrganizerID: organizerID,
		Title:       title,
	}
	if strings.TrimSpace(description) != "" {
		desc := description
		meeting.Description = &desc
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	// Skip invalid, keep valid: each slot stands on its own.
	for _, slot := range slots {
		start, err := time.Parse(time.RFC3339, slot.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, slot.End)
		if err != nil {
			continue
		}
		opt, err := s.AddTimeOption(ctx, meeting.ID, organizerID, start, end)
		if err != nil {
			return nil, err
		}
		if opt != nil {
			meeting.TimeOptions = append(meeting.TimeOptions, opt)
		}
	}

	s.notifyMeetingCreated(ctx, meeting, loc)

	return meeting, nil
}

func (s *meetingService) GetMeeting(ctx context.Context, meetingID, organizerID string) (*repository.MeetingRequest, error) {
	meeting, err := s.meetingRepo.FindByIDForOrganizer(ctx, meetingID, organizerID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}

	options, err := s.optionRepo.FindByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	meeting.TimeOptions = options
	return meeting, nil
}

func (s *meetingService) ListMeetings(ctx context.Context, organizerID string) ([]*repository.MeetingRequest, error) {
	meetings, err := s.meetingRepo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	for _, meeting := range meetings {
		options, err := s.optionRepo.FindByMeeting(ctx, meeting.ID)
		if err != nil {
			return nil, err
		}
		meeting.TimeOptions = options
	}
	return meetings, nil
}

func (s *meetingService) AddTimeOption(ctx context.Context, meetingID, organizerID string, start, end time.Time) (*repository.TimeOption, error) {
	if !end.After(start) {
		return nil, nil
	}

	meeting, err := s.meetingRepo.FindByIDForOrganizer(ctx, meetingID, organizerID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}

	option := &repository.TimeOption{
		MeetingRequestID: meeting.ID,
		StartTime:        start.UTC(),
		EndTime:          end.UTC(),
	}
	if err := s.optionRepo.Create(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

func (s *meetingService) SelectTime(ctx context.Context, meetingID, optionID, organizerID string, loc *time.Location) (*repository.TimeOption, *calendar.EventResult, error) {
	meeting, err := s.meetingRepo.FindByIDForOrganizer(ctx, meetingID, organizerID)
	if err != nil {
		return nil, nil, err
	}
	if meeting == nil {
		return nil, nil, ErrNotFound
	}

	selected, err := s.optionRepo.Select(ctx, meeting.ID, optionID)
	if err != nil {
		return nil, nil, err
	}
	if selected == nil {
		return nil, nil, ErrNotFound
	}

	if err := s.meetingRepo.Touch(ctx, meeting.ID); err != nil {
		log.Printf("[Meeting] Failed to touch meeting %s: %v", meeting.ID, err)
	}

	description := ""
	if meeting.Description != nil {
		description = *meeting.Description
	}

	organizer, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil || organizer == nil {
		organizer = &repository.User{ID: organizerID}
	}

	// Best-effort: a mock result comes back when the calendar is unreachable,
	// so picking a time never fails on calendar trouble.
	var result *calendar.EventResult
	if s.calendar != nil {
		result = s.calendar.CreateEvent(ctx, organizerID, &calendar.Event{
			Title:       meeting.Title,
			Description: description,
			Start:       selected.StartTime,
			End:         selected.EndTime,
			Organizer:   organizer.Email,
		})
	}

	s.notifyTimeSelected(ctx, meeting, selected, organizer, loc)

	return selected, result, nil
}

func (s *meetingService) DeleteMeeting(ctx context.Context, meetingID, organizerID string) error {
	meeting, err := s.meetingRepo.FindByIDForOrganizer(ctx, meetingID, organizerID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return ErrNotFound
	}

	if err := s.meetingRepo.Delete(ctx, meeting.ID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.SendMeetingDeleted(organizerID, meeting.ID)
	}
	return nil
}

func (s *meetingService) AvailabilityMessage(ctx context.Context, meetingID, organizerID string, loc *time.Location) (string, error) {
	meeting, err := s.GetMeeting(ctx, meetingID, organizerID)
	if err != nil {
		return "", err
	}
	if s.calendar == nil {
		return calendar.NoTimeSelectedMessage, nil
	}
	return s.calendar.CheckAvailabilityMessage(ctx, meeting, loc), nil
}

func (s *meetingService) notifyMeetingCreated(ctx context.Context, meeting *repository.MeetingRequest, loc *time.Location) {
	if s.notifSvc != nil {
		s.notifSvc.SendMeetingCreated(ctx, meeting.OrganizerID, meeting.ID, meeting.Title, len(meeting.TimeOptions))
	}

	if s.emailSvc != nil {
		organizer, err := s.userRepo.FindByID(ctx, meeting.OrganizerID)
		if err != nil || organizer == nil {
			return
		}
		options := meeting.TimeOptions
		go func() {
			if err := s.emailSvc.SendMeetingCreated(organizer.Email, organizer.Name, meeting, options, loc); err != nil {
				log.Printf("[Meeting] Failed to send creation email for %s: %v", meeting.ID, err)
			}
		}()
	}
}

func (s *meetingService) notifyTimeSelected(ctx context.Context, meeting *repository.MeetingRequest, selected *repository.TimeOption, organizer *repository.User, loc *time.Location) {
	if s.notifSvc != nil {
		s.notifSvc.SendTimeSelected(ctx, meeting.OrganizerID, meeting.ID, meeting.Title, selected.StartTime, selected.EndTime)
	}

	if s.broadcaster != nil {
		s.broadcaster.SendTimeSelected(meeting.OrganizerID, map[string]interface{}{
			"meetingId": meeting.ID,
			"optionId":  selected.ID,
			"start":     selected.StartTime.Format(time.RFC3339),
			"end":       selected.EndTime.Format(time.RFC3339),
		})
	}

	if s.emailSvc != nil && organizer.Email != "" {
		go func() {
			if err := s.emailSvc.SendTimeSelected(organizer.Email, organizer.Name, meeting, selected, loc); err != nil {
				log.Printf("[Meeting] Failed to send selection email for %s: %v", meeting.ID, err)
			}
		}()
	}
}
