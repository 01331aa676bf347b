// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/config"
	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/service"
)

// ============================================
// Handlers Container
// ============================================

type Handlers struct {
	Auth         *AuthHandler
	Meeting      *MeetingHandler
	Google       *GoogleHandler
	Notification *NotificationHandler
	AbTest       *AbTestHandler
}

func NewHandlers(cfg *config.Config, services *service.Services, calendarProvider *calendar.Provider, credRepo repository.CredentialRepository) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		Meeting:      NewMeetingHandler(services.Meeting),
		Google:       NewGoogleHandler(cfg, calendarProvider, credRepo),
		Notification: NewNotificationHandler(services.Notification),
		AbTest:       NewAbTestHandler(services.AbTest),
	}
}

// respondError maps service errors onto HTTP status codes with a uniform
// error body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
