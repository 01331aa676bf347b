package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aischeduler/scheduler-backend/internal/service"
)

const sessionCookie = "scheduler_session"

// AbTestHandler serves the homepage button-label experiment. Endpoints are
// public; sessions are tracked with an anonymous cookie, not a login.
type AbTestHandler struct {
	abTestService service.AbTestService
}

func NewAbTestHandler(abTestService service.AbTestService) *AbTestHandler {
	return &AbTestHandler{abTestService: abTestService}
}

// sessionKey reads the anonymous session cookie, minting one when absent.
func (h *AbTestHandler) sessionKey(c *gin.Context) string {
	if key, err := c.Cookie(sessionCookie); err == nil && key != "" {
		return key
	}
	key := uuid.New().String()
	c.SetCookie(sessionCookie, key, 60*60*24*365, "/", "", false, true)
	return key
}

// Variant handles GET /api/experiment/variant. Records a view and returns
// the session's sticky variant.
func (h *AbTestHandler) Variant(c *gin.Context) {
	key := h.sessionKey(c)

	variant, err := h.abTestService.AssignVariant(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant": variant})
}

// Click handles POST /api/experiment/click
func (h *AbTestHandler) Click(c *gin.Context) {
	key := h.sessionKey(c)

	variant, err := h.abTestService.RecordClick(
		c.Request.Context(), key, c.Request.UserAgent(), c.ClientIP(),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant": variant, "recorded": true})
}

// Stats handles GET /api/experiment/stats
func (h *AbTestHandler) Stats(c *gin.Context) {
	stats, err := h.abTestService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	type variantStats struct {
		Variant string `json:"variant"`
		Views   int    `json:"views"`
		Clicks  int    `json:"clicks"`
	}
	resp := make([]variantStats, 0, len(stats))
	for _, s := range stats {
		resp = append(resp, variantStats{Variant: s.Variant, Views: s.Views, Clicks: s.Clicks})
	}
	c.JSON(http.StatusOK, gin.H{"variants": resp})
}
