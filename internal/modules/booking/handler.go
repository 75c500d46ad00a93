package booking

import (
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes expects rg to run JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	b := rg.Group("/bookings")
	{
		b.POST("", h.CreateBooking)
		b.GET("/:id", h.GetBooking)
		b.PATCH("/:id/status", h.Transition)
		b.PATCH("/:id/specialist", middleware.StaffOnly(), h.AssignSpecialist)
		b.PATCH("/:id/payment", middleware.StaffOnly(), h.UpdatePaymentStatus)
		b.PATCH("/:id/details/:detailId/status", h.TransitionDetail)
		b.PATCH("/:id/details/:detailId/notes", h.UpdateDetailNotes)
	}

	rg.GET("/customers/:id/bookings", h.ListCustomerBookings)
	rg.GET("/specialists/:id/bookings", h.ListSpecialistBookings)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}
	var req CreateBookingRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Transition(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req TransitionRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	b, err := h.service.TransitionBooking(c.Request.Context(), actor, id, req.Status, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AssignSpecialist(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignSpecialistRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	b, err := h.service.AssignSpecialist(c.Request.Context(), actor, id, req.SpecialistID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PaymentStatusRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) TransitionDetail(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detailID, ok := paramID(c, "detailId")
	if !ok {
		return
	}
	var req DetailTransitionRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	b, err := h.service.TransitionDetail(c.Request.Context(), actor, id, detailID, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) UpdateDetailNotes(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detailID, ok := paramID(c, "detailId")
	if !ok {
		return
	}
	var req DetailNotesRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	d, err := h.service.UpdateDetailNotes(c.Request.Context(), actor, id, detailID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"detail": d})
}

func (h *Handler) ListCustomerBookings(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListCustomerBookings(c.Request.Context(), actor, id, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) ListSpecialistBookings(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if errFrom != nil || errTo != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from and to must be RFC3339 timestamps")
		return
	}

	list, err := h.service.ListSpecialistBookings(c.Request.Context(), actor, id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}
