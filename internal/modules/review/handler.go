package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skincare/internal/domain"
	"skincare/internal/middleware"
	"skincare/internal/pkg/response"
	"skincare/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/specialists/:id/reviews", h.ListBySpecialist)
		public.GET("/reviews/:id", h.Get)
		public.GET("/bookings/:id/review", h.GetForBooking)
	}

	if protected != nil {
		protected.POST("/reviews", h.Create)
		protected.GET("/reviews/pending", middleware.AdminOnly(), h.ListPending)
		protected.POST("/reviews/:id/approve", middleware.AdminOnly(), h.Approve)
		protected.POST("/reviews/:id/response", middleware.AdminOnly(), h.Respond)
	}
}

func reviewID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid review ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	var req CreateReviewRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	rv, err := h.svc.SubmitReview(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}

func optionalActor(c *gin.Context) *domain.Actor {
	if actor, ok := middleware.ActorFrom(c); ok {
		return &actor
	}
	return nil
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}

	rv, err := h.svc.GetReview(c.Request.Context(), optionalActor(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) GetForBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	rv, err := h.svc.GetReviewForBooking(c.Request.Context(), optionalActor(c), bookingID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) Approve(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := reviewID(c)
	if !ok {
		return
	}

	rv, err := h.svc.ApproveReview(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) Respond(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := reviewID(c)
	if !ok {
		return
	}
	var req AdminResponseRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	rv, err := h.svc.RespondToReview(c.Request.Context(), actor, id, req.Response)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) ListPending(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	list, err := h.svc.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": list})
}

func (h *Handler) ListBySpecialist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid specialist ID")
		return
	}

	list, err := h.svc.ListSpecialistReviews(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": list})
}
