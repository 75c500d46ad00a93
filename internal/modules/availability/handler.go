package availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skincare/internal/pkg/response"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/specialists/:id/availability", h.FreeWindows)
	rg.GET("/specialists/:id/availability/check", h.Check)
}

type checkQuery struct {
	Start           time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	DurationMinutes int       `form:"duration_minutes" binding:"required"`
}

func (h *Handler) FreeWindows(c *gin.Context) {
	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid specialist ID")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is required (YYYY-MM-DD)")
		return
	}

	windows, err := h.resolver.FreeWindows(c.Request.Context(), specialistID, date)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"specialist_id": specialistID,
		"date":          date,
		"free":          windows,
	})
}

func (h *Handler) Check(c *gin.Context) {
	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid specialist ID")
		return
	}
	var q checkQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start (RFC3339) and duration_minutes are required")
		return
	}

	ok, reason, err := h.resolver.IsAvailable(c.Request.Context(), Request{
		SpecialistID: specialistID,
		Start:        q.Start,
		Duration:     time.Duration(q.DurationMinutes) * time.Minute,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"available": ok,
		"reason":    reason,
	})
}
