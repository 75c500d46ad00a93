package catalog

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
	public.GET("/services", h.ListServices)
	public.GET("/services/:id", h.GetService)
	public.GET("/categories", h.ListCategories)
	public.GET("/categories/:id/services", h.ListServicesByCategory)
	public.GET("/specialists", h.ListSpecialists)
	public.GET("/specialists/:id", h.GetSpecialist)
	public.GET("/specialists/:id/services", h.ListSpecialistServices)

	admin := protected.Group("", middleware.AdminOnly())
	{
		admin.POST("/services", h.CreateService)
		admin.PUT("/services/:id", h.UpdateService)
		admin.POST("/categories", h.CreateCategory)
		admin.POST("/specialists", h.CreateSpecialist)
		admin.PUT("/specialists/:id", h.UpdateSpecialist)
	}
	protected.PUT("/specialists/:id/services", middleware.StaffOnly(), h.SetSpecialistServices)
}

func idParam(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

/* ---------- SERVICES ---------- */

func (h *Handler) ListServices(c *gin.Context) {
	list, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := idParam(c, "service")
	if !ok {
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) ListServicesByCategory(c *gin.Context) {
	id, ok := idParam(c, "category")
	if !ok {
		return
	}
	list, err := h.service.ListServicesByCategory(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) CreateService(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req ServiceRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) UpdateService(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := idParam(c, "service")
	if !ok {
		return
	}
	var req ServiceRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

/* ---------- CATEGORIES ---------- */

func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req CategoryRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": cat})
}

/* ---------- SPECIALISTS ---------- */

// ListSpecialists serves GET /specialists?service_id=&min_rating=.
func (h *Handler) ListSpecialists(c *gin.Context) {
	var filter SpecialistFilter
	if v := c.Query("service_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid service_id")
			return
		}
		filter.ServiceID = id
	}
	if v := c.Query("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid min_rating")
			return
		}
		filter.MinRating = rating
	}

	list, err := h.service.ListSpecialists(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"specialists": list})
}

func (h *Handler) GetSpecialist(c *gin.Context) {
	id, ok := idParam(c, "specialist")
	if !ok {
		return
	}
	spec, err := h.service.GetSpecialist(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"specialist": spec})
}

func (h *Handler) ListSpecialistServices(c *gin.Context) {
	id, ok := idParam(c, "specialist")
	if !ok {
		return
	}
	list, err := h.service.SpecialistServices(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) CreateSpecialist(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req SpecialistRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	spec, err := h.service.CreateSpecialist(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"specialist": spec})
}

func (h *Handler) UpdateSpecialist(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := idParam(c, "specialist")
	if !ok {
		return
	}
	var req SpecialistRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	spec, err := h.service.UpdateSpecialist(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"specialist": spec})
}

func (h *Handler) SetSpecialistServices(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := idParam(c, "specialist")
	if !ok {
		return
	}
	var req SpecialistServicesRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	spec, err := h.service.SetSpecialistServices(c.Request.Context(), actor, id, req.ServiceIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"specialist": spec})
}
