package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"skincare/internal/domain"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

type quizQuestionModel struct {
	ID       int64             `gorm:"column:id;primaryKey"`
	Text     string            `gorm:"column:text;type:text;not null"`
	Type     string            `gorm:"column:type;type:varchar(20);not null"`
	Active   bool              `gorm:"column:active;not null"`
	Position int               `gorm:"column:position;not null"`
	Options  []quizOptionModel `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (quizQuestionModel) TableName() string { return "quiz_questions" }

type quizOptionModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	QuestionID int64  `gorm:"column:question_id;not null;index"`
	Text       string `gorm:"column:text;type:text;not null"`
}

func (quizOptionModel) TableName() string { return "quiz_options" }

type questionServiceModel struct {
	QuestionID int64 `gorm:"column:question_id;primaryKey"`
	ServiceID  int64 `gorm:"column:service_id;primaryKey"`
}

func (questionServiceModel) TableName() string { return "quiz_question_services" }

type optionServiceModel struct {
	OptionID  int64 `gorm:"column:option_id;primaryKey"`
	ServiceID int64 `gorm:"column:service_id;primaryKey"`
}

func (optionServiceModel) TableName() string { return "quiz_option_services" }

type quizResultModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	CustomerID *int64    `gorm:"column:customer_id;index"`
	QuestionID int64     `gorm:"column:question_id;not null"`
	OptionID   *int64    `gorm:"column:option_id"`
	TextAnswer string    `gorm:"column:text_answer;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (quizResultModel) TableName() string { return "customer_quiz_results" }

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *QuizRepository) ListActiveQuestions(ctx context.Context) ([]domain.QuizQuestion, error) {
	var rows []quizQuestionModel
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		Where("active = ?", true).
		Order("position, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, rows)
}

func (r *QuizRepository) GetQuestion(ctx context.Context, id int64) (*domain.QuizQuestion, error) {
	var m quizQuestionModel
	if err := r.db.WithContext(ctx).Preload("Options", orderedOptions).First(&m, id).Error; err != nil {
		return nil, translate(err, "quiz question", id)
	}
	out, err := r.assemble(ctx, []quizQuestionModel{m})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *QuizRepository) GetOption(ctx context.Context, id int64) (*domain.QuizOption, error) {
	var m quizOptionModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "quiz option", id)
	}
	recs, err := r.optionServices(ctx, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	return &domain.QuizOption{
		ID:                    m.ID,
		QuestionID:            m.QuestionID,
		Text:                  m.Text,
		RecommendedServiceIDs: recs[m.ID],
	}, nil
}

func (r *QuizRepository) assemble(ctx context.Context, rows []quizQuestionModel) ([]domain.QuizQuestion, error) {
	questionIDs := make([]int64, 0, len(rows))
	var optionIDs []int64
	for _, q := range rows {
		questionIDs = append(questionIDs, q.ID)
		for _, o := range q.Options {
			optionIDs = append(optionIDs, o.ID)
		}
	}

	qRecs, err := r.questionServices(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	oRecs, err := r.optionServices(ctx, optionIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.QuizQuestion, 0, len(rows))
	for _, m := range rows {
		q := domain.QuizQuestion{
			ID:                    m.ID,
			Text:                  m.Text,
			Type:                  domain.QuestionType(m.Type),
			Active:                m.Active,
			Position:              m.Position,
			RecommendedServiceIDs: qRecs[m.ID],
			Options:               make([]domain.QuizOption, 0, len(m.Options)),
		}
		for _, o := range m.Options {
			q.Options = append(q.Options, domain.QuizOption{
				ID:                    o.ID,
				QuestionID:            o.QuestionID,
				Text:                  o.Text,
				RecommendedServiceIDs: oRecs[o.ID],
			})
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuizRepository) questionServices(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	if len(ids) == 0 {
		return out, nil
	}
	var links []questionServiceModel
	if err := r.db.WithContext(ctx).Where("question_id IN ?", ids).Order("service_id").Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.QuestionID] = append(out[l.QuestionID], l.ServiceID)
	}
	return out, nil
}

func (r *QuizRepository) optionServices(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	if len(ids) == 0 {
		return out, nil
	}
	var links []optionServiceModel
	if err := r.db.WithContext(ctx).Where("option_id IN ?", ids).Order("service_id").Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.OptionID] = append(out[l.OptionID], l.ServiceID)
	}
	return out, nil
}

func (r *QuizRepository) CreateQuestion(ctx context.Context, q *domain.QuizQuestion) error {
	m := quizQuestionModel{Text: q.Text, Type: string(q.Type), Active: q.Active, Position: q.Position}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(q.RecommendedServiceIDs) > 0 {
			links := make([]questionServiceModel, 0, len(q.RecommendedServiceIDs))
			for _, id := range q.RecommendedServiceIDs {
				links = append(links, questionServiceModel{QuestionID: m.ID, ServiceID: id})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		q.ID = m.ID
		return nil
	})
}

// UpdateQuestion rewrites the question and replaces its recommended
// services. Options are left alone.
func (r *QuizRepository) UpdateQuestion(ctx context.Context, q *domain.QuizQuestion) error {
	m := quizQuestionModel{ID: q.ID, Text: q.Text, Type: string(q.Type), Active: q.Active, Position: q.Position}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&quizQuestionModel{ID: q.ID}).
			Select("text", "type", "active", "position").
			Updates(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "quiz question", q.ID)
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&questionServiceModel{}).Error; err != nil {
			return err
		}
		if len(q.RecommendedServiceIDs) == 0 {
			return nil
		}
		links := make([]questionServiceModel, 0, len(q.RecommendedServiceIDs))
		for _, id := range q.RecommendedServiceIDs {
			links = append(links, questionServiceModel{QuestionID: q.ID, ServiceID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *QuizRepository) CreateOption(ctx context.Context, o *domain.QuizOption) error {
	m := quizOptionModel{QuestionID: o.QuestionID, Text: o.Text}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(o.RecommendedServiceIDs) > 0 {
			links := make([]optionServiceModel, 0, len(o.RecommendedServiceIDs))
			for _, id := range o.RecommendedServiceIDs {
				links = append(links, optionServiceModel{OptionID: m.ID, ServiceID: id})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		o.ID = m.ID
		return nil
	})
}

func (r *QuizRepository) SaveResults(ctx context.Context, results []domain.CustomerQuizResult) error {
	if len(results) == 0 {
		return nil
	}
	rows := make([]quizResultModel, 0, len(results))
	for _, res := range results {
		rows = append(rows, quizResultModel{
			CustomerID: res.CustomerID,
			QuestionID: res.QuestionID,
			OptionID:   res.OptionID,
			TextAnswer: res.TextAnswer,
		})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	for i := range results {
		results[i].ID = rows[i].ID
		results[i].CreatedAt = rows[i].CreatedAt
	}
	return nil
}

func (r *QuizRepository) ListResultsByCustomer(ctx context.Context, customerID int64) ([]domain.CustomerQuizResult, error) {
	var rows []quizResultModel
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CustomerQuizResult, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.CustomerQuizResult{
			ID:         m.ID,
			CustomerID: m.CustomerID,
			QuestionID: m.QuestionID,
			OptionID:   m.OptionID,
			TextAnswer: m.TextAnswer,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}
