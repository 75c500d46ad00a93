package quiz

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

// RegisterRoutes mounts the questionnaire. public should run
// OptionalJWTAuth so signed-in customers get their answers stored.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/quiz/questions", h.ListQuestions)
	public.GET("/quiz/questions/:id", h.GetQuestion)
	public.POST("/quiz/submit", h.Submit)

	protected.POST("/quiz/questions", middleware.AdminOnly(), h.CreateQuestion)
	protected.PUT("/quiz/questions/:id", middleware.AdminOnly(), h.UpdateQuestion)
	protected.POST("/quiz/questions/:id/options", middleware.AdminOnly(), h.CreateOption)
	protected.GET("/customers/:id/quiz-results", h.ListResults)
}

func (h *Handler) ListQuestions(c *gin.Context) {
	list, err := h.svc.ListQuestions(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": list})
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	res, err := h.svc.SubmitQuiz(c.Request.Context(), actorPtr(c), req.Answers)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func actorPtr(c *gin.Context) *domain.Actor {
	if a, ok := middleware.ActorFrom(c); ok {
		return &a
	}
	return nil
}

func (h *Handler) CreateQuestion(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req CreateQuestionRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	q, err := h.svc.CreateQuestion(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

func questionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid question ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) GetQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	q, err := h.svc.GetQuestion(c.Request.Context(), actorPtr(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := questionID(c)
	if !ok {
		return
	}
	var req UpdateQuestionRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	q, err := h.svc.UpdateQuestion(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}

func (h *Handler) CreateOption(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, ok := questionID(c)
	if !ok {
		return
	}
	var req CreateOptionRequest
	if !validator.BindJSON(c, &req) {
		return
	}

	o, err := h.svc.CreateOption(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"option": o})
}

func (h *Handler) ListResults(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	list, err := h.svc.ListResults(c.Request.Context(), actor, customerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": list})
}
