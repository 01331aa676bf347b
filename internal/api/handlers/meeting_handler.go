package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aischeduler/scheduler-backend/internal/api/middleware"
	"github.com/aischeduler/scheduler-backend/internal/models"
	"github.com/aischeduler/scheduler-backend/internal/service"
)

type MeetingHandler struct {
	meetingService service.MeetingService
}

func NewMeetingHandler(meetingService service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

type createMeetingRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	TimeSlots   []service.TimeSlotInput `json:"timeSlots"`
}

type addTimeOptionRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// Create handles POST /api/meetings. Invalid slots in the batch are skipped;
// the response reports how many made it in.
func (h *MeetingHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetingService.CreateMeeting(
		c.Request.Context(), userID, req.Title, req.Description, req.TimeSlots, middleware.GetLocation(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"meeting":        models.ToMeetingResponse(meeting),
		"optionsCreated": len(meeting.TimeOptions),
		"optionsSkipped": len(req.TimeSlots) - len(meeting.TimeOptions),
	})
}

// List handles GET /api/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	meetings, err := h.meetingService.ListMeetings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		resp = append(resp, models.ToMeetingResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"meetings": resp})
}

// Get handles GET /api/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	meeting, err := h.meetingService.GetMeeting(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMeetingResponse(meeting))
}

// AddTimeOption handles POST /api/meetings/:id/options. A window that fails
// to parse or ends before it starts yields a 200 with created=false rather
// than an error, matching batch creation semantics.
func (h *MeetingHandler) AddTimeOption(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req addTimeOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, startErr := time.Parse(time.RFC3339, req.Start)
	end, endErr := time.Parse(time.RFC3339, req.End)
	if startErr != nil || endErr != nil {
		c.JSON(http.StatusOK, gin.H{"created": false})
		return
	}

	option, err := h.meetingService.AddTimeOption(c.Request.Context(), c.Param("id"), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	if option == nil {
		c.JSON(http.StatusOK, gin.H{"created": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": true,
		"option":  models.ToTimeOptionResponse(option),
	})
}

// SelectTime handles POST /api/meetings/:id/options/:optionId/select
func (h *MeetingHandler) SelectTime(c *gin.Context) {
	userID := middleware.GetUserID(c)

	selected, result, err := h.meetingService.SelectTime(
		c.Request.Context(), c.Param("id"), c.Param("optionId"), userID, middleware.GetLocation(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selected":      models.ToTimeOptionResponse(selected),
		"calendarEvent": models.ToEventResultResponse(result),
	})
}

// Availability handles GET /api/meetings/:id/availability
func (h *MeetingHandler) Availability(c *gin.Context) {
	userID := middleware.GetUserID(c)

	message, err := h.meetingService.AvailabilityMessage(
		c.Request.Context(), c.Param("id"), userID, middleware.GetLocation(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Delete handles DELETE /api/meetings/:id
func (h *MeetingHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.meetingService.DeleteMeeting(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted"})
}
