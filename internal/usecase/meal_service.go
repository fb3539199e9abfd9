package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// Listing limits for meals
const (
	defaultMealListLimit = 20
	maxMealListLimit     = 100
	maxSummaryDays       = 365
)

// estimatedPortionPrefix marks items whose grams came from the portion estimator
const estimatedPortionPrefix = "estimated:"

// MealServiceConfig holds configuration for the meal service
type MealServiceConfig struct {
	Location *time.Location
	Now      func() time.Time
}

// MealService logs meals, snapshotting each item's nutrients at creation time
type MealService struct {
	foods    domain.FoodLookup
	portions *PortionEstimator
	repo     domain.MealRepository
	location *time.Location
	now      func() time.Time
	log      *logger.Logger
}

// NewMealService creates a new meal service
func NewMealService(
	foods domain.FoodLookup,
	portions *PortionEstimator,
	repo domain.MealRepository,
	config MealServiceConfig,
	log *logger.Logger,
) *MealService {
	if log == nil {
		log = logger.Nop()
	}
	if portions == nil {
		portions = NewPortionEstimator(ProfileGeneral)
	}
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &MealService{
		foods:    foods,
		portions: portions,
		repo:     repo,
		location: loc,
		now:      now,
		log:      log.With("service", "MealService"),
	}
}

// CreateMeal validates every item, computes snapshots and persists the meal
// with its items in one write. Any invalid item or unknown food rejects the
// whole meal before anything is stored.
func (s *MealService) CreateMeal(ctx context.Context, req domain.CreateMealRequest) (*domain.Meal, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: meal items required", domain.ErrInvalidRequest)
	}

	now := s.now()
	meal := &domain.Meal{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Source:    strings.TrimSpace(req.Source),
		Note:      req.Note,
		EatenAt:   now,
		CreatedAt: now,
		Items:     make([]domain.MealItem, 0, len(req.Items)),
	}
	if meal.Source == "" {
		meal.Source = domain.SourceManual
	}
	if req.EatenAt != nil && !req.EatenAt.IsZero() {
		meal.EatenAt = *req.EatenAt
	}

	foodIDs := make([]string, len(req.Items))
	for i, in := range req.Items {
		foodIDs[i] = in.FoodID
	}
	records, err := s.foods.GetRecords(ctx, foodIDs)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.NutrientVector, 0, len(req.Items))
	for i, in := range req.Items {
		rec := records[i]
		grams, label, err := s.itemGrams(in, rec.Category, req.PortionProfile)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		item := domain.MealItem{
			ID:           uuid.NewString(),
			MealID:       meal.ID,
			FoodID:       rec.FoodID,
			FoodName:     rec.CanonicalName,
			Grams:        grams,
			PortionLabel: label,
			Confidence:   in.Confidence,
			RawText:      in.RawText,
			Nutrients:    Scale(rec.Per100g, grams),
			CreatedAt:    now,
		}
		meal.Items = append(meal.Items, item)
		snapshots = append(snapshots, item.Nutrients)
	}
	meal.Nutrients = Sum(snapshots)

	if err := s.repo.Save(ctx, meal); err != nil {
		return nil, fmt.Errorf("save meal: %w", err)
	}

	s.log.Info("meal created", "meal_id", meal.ID, "user_id", meal.UserID, "items", len(meal.Items), "calories", meal.Nutrients.Calories)
	return meal, nil
}

// itemGrams returns the explicit grams of an item, or the portion estimate
// midpoint when the item has none
func (s *MealService) itemGrams(in domain.MealItemInput, category, profile string) (float64, string, error) {
	if in.Grams != nil {
		if err := validateGrams(*in.Grams); err != nil {
			return 0, "", err
		}
		return *in.Grams, in.PortionLabel, nil
	}

	est, err := s.portions.Estimate(category, profile, PointMid)
	if err != nil {
		return 0, "", err
	}
	label := in.PortionLabel
	if label == "" {
		label = estimatedPortionPrefix + est.Label
	}
	return est.Estimated, label, nil
}

// GetMeal returns one meal of the user
func (s *MealService) GetMeal(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(mealID) == "" {
		return nil, fmt.Errorf("%w: user id and meal id are required", domain.ErrInvalidRequest)
	}
	return s.repo.Get(ctx, userID, mealID)
}

// ListMeals returns the user's most recent meals, newest first
func (s *MealService) ListMeals(ctx context.Context, userID string, limit int) ([]domain.Meal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultMealListLimit
	}
	if limit < 0 || limit > maxMealListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, maxMealListLimit)
	}
	return s.repo.List(ctx, userID, limit)
}

// DeleteMeal removes a meal and its items
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(mealID) == "" {
		return fmt.Errorf("%w: user id and meal id are required", domain.ErrInvalidRequest)
	}
	if err := s.repo.Delete(ctx, userID, mealID); err != nil {
		return err
	}
	s.log.Info("meal deleted", "meal_id", mealID, "user_id", userID)
	return nil
}

// Summary aggregates the user's meals over the last days, bucketed per calendar day
func (s *MealService) Summary(ctx context.Context, userID string, days int) (*domain.PeriodSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if days < 1 || days > maxSummaryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidRequest, maxSummaryDays)
	}

	to := s.now()
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	summary, err := s.summarize(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	summary.Days = days
	summary.Meals = nil
	return summary, nil
}

// Today aggregates the user's meals since local midnight and includes the meals themselves
func (s *MealService) Today(ctx context.Context, userID string) (*domain.PeriodSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	summary, err := s.summarize(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}
	summary.Days = 1
	return summary, nil
}

func (s *MealService) summarize(ctx context.Context, userID string, from, to time.Time) (*domain.PeriodSummary, error) {
	meals, err := s.repo.ListSince(ctx, userID, from)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimedVector, 0, len(meals))
	for _, m := range meals {
		entries = append(entries, domain.TimedVector{Timestamp: m.EatenAt, Nutrients: m.Nutrients})
	}
	total, daily := SumByDay(entries, s.location)

	return &domain.PeriodSummary{
		UserID:     userID,
		From:       from,
		To:         to,
		TotalMeals: len(meals),
		Total:      total,
		Daily:      daily,
		Meals:      meals,
	}, nil
}
