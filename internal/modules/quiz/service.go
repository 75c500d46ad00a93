package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"skincare/internal/domain"
	"skincare/internal/pkg/metrics"
	"skincare/internal/repository"
)

type Service struct {
	store   *repository.Store
	metrics *metrics.Metrics
}

func NewService(store *repository.Store, m *metrics.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

func (s *Service) ListQuestions(ctx context.Context) ([]domain.QuizQuestion, error) {
	return s.store.Quiz.ListActiveQuestions(ctx)
}

// SubmitQuiz stores the answers and returns the active services they
// recommend, ordered by id. actor is nil for anonymous respondents.
func (s *Service) SubmitQuiz(ctx context.Context, actor *domain.Actor, answers []domain.QuizAnswer) (*SubmitResponse, error) {
	out := &SubmitResponse{RecommendedServiceIDs: []int64{}, Services: []domain.Service{}}
	if len(answers) == 0 {
		return out, nil
	}

	var customerID *int64
	if actor != nil && actor.Role == domain.RoleCustomer {
		id := actor.ID
		customerID = &id
	}

	selections := make([]Selection, 0, len(answers))
	results := make([]domain.CustomerQuizResult, 0, len(answers))
	questions := make(map[int64]*domain.QuizQuestion)

	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			var err error
			q, err = s.store.Quiz.GetQuestion(ctx, a.QuestionID)
			if err != nil {
				return nil, err
			}
			questions[a.QuestionID] = q
		}

		sel := Selection{Question: *q}
		if a.OptionID != nil {
			opt, err := s.store.Quiz.GetOption(ctx, *a.OptionID)
			if err != nil {
				return nil, err
			}
			if opt.QuestionID != q.ID {
				return nil, fmt.Errorf("%w: option %d does not belong to question %d", ErrValidation, opt.ID, q.ID)
			}
			sel.Option = opt
		}
		selections = append(selections, sel)

		results = append(results, domain.CustomerQuizResult{
			CustomerID: customerID,
			QuestionID: q.ID,
			OptionID:   a.OptionID,
			TextAnswer: strings.TrimSpace(a.Text),
		})
	}

	if err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Quiz.SaveResults(ctx, results)
	}); err != nil {
		return nil, err
	}

	ids := Recommend(selections)
	out.RecommendedServiceIDs = ids
	if len(ids) > 0 {
		services, err := s.store.Services.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, svc := range services {
			if svc.Active {
				out.Services = append(out.Services, svc)
			}
		}
	}

	s.metrics.QuizSubmitted()
	zerolog.Ctx(ctx).Debug().
		Int("answers", len(answers)).
		Int("recommended", len(out.Services)).
		Msg("quiz submitted")
	return out, nil
}

func (s *Service) CreateQuestion(ctx context.Context, actor domain.Actor, req CreateQuestionRequest) (*domain.QuizQuestion, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage the quiz", ErrForbidden)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown question type %q", ErrValidation, req.Type)
	}
	q := &domain.QuizQuestion{
		Text:                  strings.TrimSpace(req.Text),
		Type:                  req.Type,
		Active:                true,
		Position:              req.Position,
		RecommendedServiceIDs: req.RecommendedServiceIDs,
	}
	if err := s.store.Quiz.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuestion hides inactive questions from everyone but admins.
func (s *Service) GetQuestion(ctx context.Context, actor *domain.Actor, id int64) (*domain.QuizQuestion, error) {
	q, err := s.store.Quiz.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.Active && (actor == nil || !actor.IsAdmin()) {
		return nil, fmt.Errorf("quiz question %d: %w", id, repository.ErrNotFound)
	}
	return q, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, actor domain.Actor, id int64, req UpdateQuestionRequest) (*domain.QuizQuestion, error) {
	q, err := s.store.Quiz.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage the quiz", ErrForbidden)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown question type %q", ErrValidation, req.Type)
	}
	if req.Type == domain.QuestionText && len(q.Options) > 0 {
		return nil, fmt.Errorf("%w: question %d has options and cannot become a text question", ErrValidation, id)
	}

	q.Text = strings.TrimSpace(req.Text)
	q.Type = req.Type
	q.Position = req.Position
	q.RecommendedServiceIDs = req.RecommendedServiceIDs
	if req.Active != nil {
		q.Active = *req.Active
	}
	if err := s.store.Quiz.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return s.store.Quiz.GetQuestion(ctx, id)
}

func (s *Service) CreateOption(ctx context.Context, actor domain.Actor, questionID int64, req CreateOptionRequest) (*domain.QuizOption, error) {
	q, err := s.store.Quiz.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage the quiz", ErrForbidden)
	}
	if q.Type == domain.QuestionText {
		return nil, fmt.Errorf("%w: text questions have no options", ErrValidation)
	}
	o := &domain.QuizOption{
		QuestionID:            q.ID,
		Text:                  strings.TrimSpace(req.Text),
		RecommendedServiceIDs: req.RecommendedServiceIDs,
	}
	if err := s.store.Quiz.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListResults(ctx context.Context, actor domain.Actor, customerID int64) ([]domain.CustomerQuizResult, error) {
	if !actor.IsStaff() && !actor.IsCustomer(customerID) {
		return nil, fmt.Errorf("%w: quiz results of customer %d", ErrForbidden, customerID)
	}
	return s.store.Quiz.ListResultsByCustomer(ctx, customerID)
}
