package schedule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skincare/internal/middleware"
	"skincare/internal/pkg/response"
	"skincare/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/specialists/:id/schedule", h.List)

	protected.POST("/specialists/:id/schedule", h.Create)
	protected.PUT("/schedule/:id", h.Update)
	protected.DELETE("/schedule/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid specialist ID")
		return
	}
	entries, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": entries})
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid specialist ID")
		return
	}
	var req EntryRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"entry": entry})
}

func (h *Handler) Update(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule entry ID")
		return
	}
	var req EntryRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	entry, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entry": entry})
}

func (h *Handler) Delete(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid schedule entry ID")
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
