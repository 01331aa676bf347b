// Package models holds the JSON shapes returned by the API.
package models

import (
	"time"

	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/repository"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TimeOptionResponse struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	IsSelected      bool      `json:"isSelected"`
}

type MeetingResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	TimeOptions  []TimeOptionResponse `json:"timeOptions"`
	SelectedTime *TimeOptionResponse  `json:"selectedTime,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type EventResultResponse struct {
	Status  string                `json:"status"`
	EventID string                `json:"eventId"`
	Message string                `json:"message"`
	Details calendar.EventDetails `json:"details"`
}

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

func ToUserResponse(u *repository.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func ToTimeOptionResponse(o *repository.TimeOption) TimeOptionResponse {
	return TimeOptionResponse{
		ID:              o.ID,
		StartTime:       o.StartTime,
		EndTime:         o.EndTime,
		DurationMinutes: o.DurationMinutes(),
		IsSelected:      o.IsSelected,
	}
}

func ToMeetingResponse(m *repository.MeetingRequest) MeetingResponse {
	resp := MeetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		TimeOptions: []TimeOptionResponse{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Description != nil {
		resp.Description = *m.Description
	}
	for _, opt := range m.TimeOptions {
		optResp := ToTimeOptionResponse(opt)
		resp.TimeOptions = append(resp.TimeOptions, optResp)
		if opt.IsSelected {
			selected := optResp
			resp.SelectedTime = &selected
		}
	}
	return resp
}

func ToEventResultResponse(r *calendar.EventResult) *EventResultResponse {
	if r == nil {
		return nil
	}
	return &EventResultResponse{
		Status:  r.Status,
		EventID: r.EventID,
		Message: r.Message,
		Details: r.Details,
	}
}

func ToNotificationResponse(n *repository.Notification) NotificationResponse {
	data := n.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Data:      data,
		CreatedAt: n.CreatedAt,
	}
}
