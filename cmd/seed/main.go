package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skincare/internal/config"
	"skincare/internal/database"
	"skincare/internal/domain"
	jwtsvc "skincare/internal/pkg/jwt"
	"skincare/internal/pkg/logger"
	"skincare/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Logger = logger.New(logger.Config{Level: cfg.Log.Level, Format: "console"})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Cleanup old data, children first.
	log.Info().Msg("cleaning old data...")
	for _, table := range []string{
		"customer_quiz_results", "quiz_option_services", "quiz_question_services", "quiz_options", "quiz_questions",
		"reviews", "booking_details", "bookings", "specialist_schedules", "specialist_services", "specialists",
		"service_categories", "services", "categories",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("cleanup failed")
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db)

	// ================== CATALOG ==================
	log.Info().Msg("creating catalog...")
	categories := map[string]*domain.Category{
		"facials": {Name: "Facials", Description: "Cleansing and hydrating facial treatments"},
		"peels":   {Name: "Peels", Description: "Chemical and enzyme peels"},
		"massage": {Name: "Massage", Description: "Face and neck massage"},
	}
	for _, c := range categories {
		must(store.Services.CreateCategory(ctx, c))
	}

	svc := func(name string, price string, minutes int, cats ...string) *domain.Service {
		s := &domain.Service{
			Name:            name,
			Price:           decimal.RequireFromString(price),
			DurationMinutes: minutes,
			Active:          true,
		}
		for _, key := range cats {
			s.CategoryIDs = append(s.CategoryIDs, categories[key].ID)
		}
		must(store.Services.Create(ctx, s))
		return s
	}
	classic := svc("Classic facial", "45.00", 60, "facials")
	hydra := svc("Hydrating facial", "65.00", 75, "facials")
	enzyme := svc("Enzyme peel", "40.00", 30, "peels")
	glycolic := svc("Glycolic peel", "55.00", 45, "peels")
	lift := svc("Sculpting massage", "35.00", 30, "massage", "facials")

	// ================== SPECIALISTS ==================
	log.Info().Msg("creating specialists and schedules...")
	specialists := []*domain.Specialist{
		{Name: "Anna Petrova", Specialization: "Cosmetologist", ServiceIDs: []int64{classic.ID, hydra.ID, enzyme.ID, glycolic.ID}},
		{Name: "Dana Sultan", Specialization: "Aesthetician", ServiceIDs: []int64{classic.ID, lift.ID}},
		{Name: "Mira Kim", Specialization: "Massage therapist", ServiceIDs: []int64{lift.ID, enzyme.ID}},
	}
	for i, s := range specialists {
		must(store.Specialists.Create(ctx, s))
		// Monday to Saturday; shifts alternate by specialist.
		for day := 1; day <= 6; day++ {
			start, end := "09:00", "13:00"
			if (day+i)%2 == 0 {
				start, end = "12:00", "18:00"
			}
			must(store.Schedules.Create(ctx, &domain.ScheduleEntry{
				SpecialistID: s.ID,
				DayOfWeek:    day,
				StartTime:    start,
				EndTime:      end,
				Available:    true,
			}))
		}
	}

	// ================== QUIZ ==================
	log.Info().Msg("creating quiz...")
	skin := &domain.QuizQuestion{Text: "How would you describe your skin?", Type: domain.QuestionSingleChoice, Active: true, Position: 1}
	must(store.Quiz.CreateQuestion(ctx, skin))
	for _, o := range []domain.QuizOption{
		{Text: "Dry", RecommendedServiceIDs: []int64{hydra.ID}},
		{Text: "Oily", RecommendedServiceIDs: []int64{classic.ID, glycolic.ID}},
		{Text: "Combination", RecommendedServiceIDs: []int64{classic.ID}},
		{Text: "Sensitive", RecommendedServiceIDs: []int64{enzyme.ID}},
	} {
		o.QuestionID = skin.ID
		must(store.Quiz.CreateOption(ctx, &o))
	}

	concern := &domain.QuizQuestion{Text: "What bothers you most?", Type: domain.QuestionMultipleChoice, Active: true, Position: 2}
	must(store.Quiz.CreateQuestion(ctx, concern))
	for _, o := range []domain.QuizOption{
		{Text: "Dull tone", RecommendedServiceIDs: []int64{enzyme.ID, glycolic.ID}},
		{Text: "Puffiness", RecommendedServiceIDs: []int64{lift.ID}},
		{Text: "Dehydration", RecommendedServiceIDs: []int64{hydra.ID}},
	} {
		o.QuestionID = concern.ID
		must(store.Quiz.CreateOption(ctx, &o))
	}

	notes := &domain.QuizQuestion{
		Text:                  "Anything else we should know?",
		Type:                  domain.QuestionText,
		Active:                true,
		Position:              3,
		RecommendedServiceIDs: []int64{classic.ID},
	}
	must(store.Quiz.CreateQuestion(ctx, notes))

	// ================== TOKENS ==================
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	log.Info().Msg("seed completed, development tokens:")
	for _, a := range []domain.Actor{
		{ID: 1, Role: domain.RoleAdmin},
		{ID: 2, Role: domain.RoleStaff},
		{ID: specialists[0].ID, Role: domain.RoleSpecialist},
		{ID: 100, Role: domain.RoleCustomer},
	} {
		token, err := j.GenerateToken(a)
		if err != nil {
			log.Fatal().Err(err).Msg("token generation failed")
		}
		fmt.Printf("%-10s id=%-4d %s\n", a.Role, a.ID, token)
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}
