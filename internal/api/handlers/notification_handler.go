package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aischeduler/scheduler-backend/internal/api/middleware"
	"github.com/aischeduler/scheduler-backend/internal/models"
	"github.com/aischeduler/scheduler-backend/internal/service"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notificationService.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, models.ToNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": resp})
}

// Count handles GET /api/notifications/count
func (h *NotificationHandler) Count(c *gin.Context) {
	userID := middleware.GetUserID(c)

	total, unread, err := h.notificationService.Count(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "unread": unread})
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delete handles DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.notificationService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
