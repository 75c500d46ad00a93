package domain

import "time"

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionText           QuestionType = "TEXT"
)

func (t QuestionType) Valid() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice || t == QuestionText
}

type QuizQuestion struct {
	ID                    int64        `json:"id"`
	Text                  string       `json:"text"`
	Type                  QuestionType `json:"type"`
	Active                bool         `json:"active"`
	Position              int          `json:"position"`
	RecommendedServiceIDs []int64      `json:"recommended_service_ids,omitempty"`
	Options               []QuizOption `json:"options,omitempty"`
}

type QuizOption struct {
	ID                    int64   `json:"id"`
	QuestionID            int64   `json:"question_id"`
	Text                  string  `json:"text"`
	RecommendedServiceIDs []int64 `json:"recommended_service_ids,omitempty"`
}

// QuizAnswer is one submitted answer. OptionID is nil for free-text answers.
type QuizAnswer struct {
	QuestionID int64  `json:"question_id"`
	OptionID   *int64 `json:"option_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

type CustomerQuizResult struct {
	ID         int64     `json:"id"`
	CustomerID *int64    `json:"customer_id,omitempty"`
	QuestionID int64     `json:"question_id"`
	OptionID   *int64    `json:"option_id,omitempty"`
	TextAnswer string    `json:"text_answer,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
