package quiz

import "skincare/internal/domain"

type SubmitRequest struct {
	Answers []domain.QuizAnswer `json:"answers" validate:"dive"`
}

type CreateQuestionRequest struct {
	Text                  string              `json:"text" validate:"required,max=500"`
	Type                  domain.QuestionType `json:"type" validate:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE TEXT"`
	Position              int                 `json:"position" validate:"gte=0"`
	RecommendedServiceIDs []int64             `json:"recommended_service_ids" validate:"dive,gt=0"`
}

type UpdateQuestionRequest struct {
	Text                  string              `json:"text" validate:"required,max=500"`
	Type                  domain.QuestionType `json:"type" validate:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE TEXT"`
	Active                *bool               `json:"active,omitempty"`
	Position              int                 `json:"position" validate:"gte=0"`
	RecommendedServiceIDs []int64             `json:"recommended_service_ids" validate:"dive,gt=0"`
}

type CreateOptionRequest struct {
	Text                  string  `json:"text" validate:"required,max=500"`
	RecommendedServiceIDs []int64 `json:"recommended_service_ids" validate:"dive,gt=0"`
}

type SubmitResponse struct {
	RecommendedServiceIDs []int64          `json:"recommended_service_ids"`
	Services              []domain.Service `json:"services"`
}
