package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// Limits applied to resolve requests
const (
	defaultResolveLimit = 5
	maxResolveLimit     = 50
)

// commonFoods are the everyday foods the curated synonym table was built
// around; ValidateCommonFoods measures how many of them the store resolves.
var commonFoods = []string{
	"白飯", "糙米飯", "麵條", "吐司", "饅頭",
	"雞胸肉", "雞蛋", "豆腐", "鮭魚", "豬肉",
	"菠菜", "高麗菜", "花椰菜", "番茄", "紅蘿蔔",
	"蘋果", "香蕉", "柳橙", "芭樂", "奇異果",
}

// commonFoodsTargetPercent is the match rate a healthy dataset is expected to reach
const commonFoodsTargetPercent = 80.0

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	CacheTTL           time.Duration
	DefaultLimit       int
	MaxLimit           int
	DefaultProfile     string
	Location           *time.Location
	EnableDebugLogging bool
}

// NutritionService is the entry point of the core: it resolves food text to
// records, scales servings, estimates portions and aggregates vectors against
// the catalog's current store generation.
type NutritionService struct {
	catalog      *Catalog
	cache        domain.CacheRepository
	matcher      *MatchingService
	portions     *PortionEstimator
	preprocessor *QueryPreprocessor
	cacheTTL     time.Duration
	defaultLimit int
	maxLimit     int
	location     *time.Location
	log          *logger.Logger

	totalQueries      atomic.Int64
	successfulMatches atomic.Int64
	failedMatches     atomic.Int64
}

// NewNutritionService creates a new nutrition service with dependencies.
// cache may be nil, in which case resolve results are not cached.
func NewNutritionService(
	catalog *Catalog,
	cache domain.CacheRepository,
	config NutritionServiceConfig,
	log *logger.Logger,
) *NutritionService {
	if log == nil {
		log = logger.Nop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultResolveLimit
	}
	maxLimit := config.MaxLimit
	if maxLimit <= 0 {
		maxLimit = maxResolveLimit
	}
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}

	return &NutritionService{
		catalog:      catalog,
		cache:        cache,
		matcher:      NewMatchingService(MatchConfig{EnableDebugLogging: config.EnableDebugLogging}, log),
		portions:     NewPortionEstimator(config.DefaultProfile),
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging, log),
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		location:     loc,
		log:          log.With("service", "NutritionService"),
	}
}

// Portions exposes the portion estimator shared with meal logging
func (s *NutritionService) Portions() *PortionEstimator { return s.portions }

// Resolve ranks records for a query with the requested strategy.
// Flow: validate -> check cache -> match against current store -> cache -> return
func (s *NutritionService) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolveResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > s.maxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, s.maxLimit)
	}
	mode := req.Mode
	if mode == "" {
		mode = domain.ModeRanked
	}
	if mode != domain.ModeRanked && mode != domain.ModeCascading {
		return nil, fmt.Errorf("%w: unknown match mode %q", domain.ErrInvalidRequest, mode)
	}

	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(store.Fingerprint(), mode, strings.TrimSpace(req.Category), limit, query)

	results, err := s.getFromCache(ctx, cacheKey)
	if err != nil {
		results = s.matcher.Match(store, mode, query, strings.TrimSpace(req.Category), limit)
		if err := s.setInCache(ctx, cacheKey, results); err != nil {
			s.log.Warn("cache write failed", "key", cacheKey, "error", err)
		}
	}

	s.recordQuery(len(results) > 0)

	return &domain.ResolveResponse{
		Query:      query,
		Mode:       mode,
		Count:      len(results),
		Results:    results,
		Generation: store.Generation(),
	}, nil
}

// GetRecord returns the record for a food id
func (s *NutritionService) GetRecord(ctx context.Context, foodID string) (*domain.FoodRecord, error) {
	if strings.TrimSpace(foodID) == "" {
		return nil, fmt.Errorf("%w: food_id is required", domain.ErrInvalidRequest)
	}
	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	rec, ok := store.Lookup(foodID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFoodNotFound, foodID)
	}
	return &rec, nil
}

// GetRecords looks up several food ids against one store generation, so a
// concurrent reload cannot mix data from two generations
func (s *NutritionService) GetRecords(ctx context.Context, foodIDs []string) ([]domain.FoodRecord, error) {
	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	records := make([]domain.FoodRecord, 0, len(foodIDs))
	for i, id := range foodIDs {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("item %d: %w: food_id is required", i, domain.ErrInvalidRequest)
		}
		rec, ok := store.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("item %d: %w: %s", i, domain.ErrFoodNotFound, id)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ComputeServing scales a record's per-100g vector to grams
func (s *NutritionService) ComputeServing(ctx context.Context, foodID string, grams float64) (*domain.Serving, error) {
	if err := validateGrams(grams); err != nil {
		return nil, err
	}
	rec, err := s.GetRecord(ctx, foodID)
	if err != nil {
		return nil, err
	}
	return &domain.Serving{
		FoodID:    rec.FoodID,
		Name:      rec.CanonicalName,
		Category:  rec.Category,
		Grams:     grams,
		Nutrients: Scale(rec.Per100g, grams),
	}, nil
}

// Calculate resolves free text with the cascading search and scales the top
// record. Explicit grams win; otherwise a quantity written in the text is
// used, and 100 g when there is none. No match is reported as ErrFoodNotFound.
func (s *NutritionService) Calculate(ctx context.Context, text string, grams *float64) (*domain.Serving, error) {
	query, parsed, found := s.preprocessor.ExtractQuantity(text)
	if query == "" {
		return nil, fmt.Errorf("%w: food name is required", domain.ErrInvalidRequest)
	}

	amount := 100.0
	switch {
	case grams != nil:
		amount = *grams
	case found:
		amount = parsed
	}
	if err := validateGrams(amount); err != nil {
		return nil, err
	}

	resp, err := s.Resolve(ctx, domain.ResolveRequest{Query: query, Limit: 1, Mode: domain.ModeCascading})
	if err != nil {
		return nil, err
	}
	if resp.Count == 0 {
		return nil, fmt.Errorf("%w: no match for %q", domain.ErrFoodNotFound, query)
	}
	return s.ComputeServing(ctx, resp.Results[0].FoodID, amount)
}

// EstimatePortion returns the heuristic gram range for a category and profile
func (s *NutritionService) EstimatePortion(category, profile, point string) (domain.PortionEstimate, error) {
	return s.portions.Estimate(category, profile, point)
}

// Aggregate sums nutrient vectors
func (s *NutritionService) Aggregate(vectors []domain.NutrientVector) domain.NutrientVector {
	return Sum(vectors)
}

// AggregateByDay sums timestamped vectors per calendar day in the configured timezone
func (s *NutritionService) AggregateByDay(entries []domain.TimedVector) *domain.PeriodSummary {
	total, days := SumByDay(entries, s.location)
	return &domain.PeriodSummary{
		TotalMeals: len(entries),
		Total:      total,
		Daily:      days,
	}
}

// Categories returns the sorted categories of the current store
func (s *NutritionService) Categories(ctx context.Context) ([]string, error) {
	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	return store.Categories(), nil
}

// Reload rebuilds the store from its dataset source and swaps it in
func (s *NutritionService) Reload(ctx context.Context) (domain.StoreStats, error) {
	if _, err := s.catalog.Reload(ctx); err != nil {
		return domain.StoreStats{}, err
	}
	return s.Stats(), nil
}

// Stats reports the served generation and query counters
func (s *NutritionService) Stats() domain.StoreStats {
	stats := domain.StoreStats{
		TotalQueries:      s.totalQueries.Load(),
		SuccessfulMatches: s.successfulMatches.Load(),
		FailedMatches:     s.failedMatches.Load(),
		Status:            "no_data",
	}
	if stats.TotalQueries > 0 {
		stats.MatchRatePercent = roundTo(float64(stats.SuccessfulMatches)/float64(stats.TotalQueries)*100, 1)
	}
	if store, err := s.catalog.Current(); err == nil {
		stats.Generation = store.Generation()
		stats.LoadedAt = store.BuiltAt()
		stats.TotalFoods = store.Len()
		stats.TotalCategories = len(store.categories)
		if store.Len() > 0 {
			stats.Status = "healthy"
		}
	}
	return stats
}

// CommonFoodResult is the outcome for one food of the validation run
type CommonFoodResult struct {
	Query       string `json:"query"`
	Matched     bool   `json:"matched"`
	MatchedName string `json:"matchedName,omitempty"`
	FoodID      string `json:"foodId,omitempty"`
}

// CommonFoodsReport summarizes how well the store covers everyday foods
type CommonFoodsReport struct {
	TestCount        int                `json:"testCount"`
	MatchedCount     int                `json:"matchedCount"`
	MatchRatePercent float64            `json:"matchRatePercent"`
	TargetPercent    float64            `json:"targetRatePercent"`
	Passed           bool               `json:"passed"`
	Details          []CommonFoodResult `json:"details"`
}

// ValidateCommonFoods runs the cascading search for each common food. It does
// not touch the query counters.
func (s *NutritionService) ValidateCommonFoods(ctx context.Context) (*CommonFoodsReport, error) {
	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	report := &CommonFoodsReport{
		TestCount:     len(commonFoods),
		TargetPercent: commonFoodsTargetPercent,
		Details:       make([]CommonFoodResult, 0, len(commonFoods)),
	}
	for _, food := range commonFoods {
		res := CommonFoodResult{Query: food}
		if matches := s.matcher.Cascade(store, food, "", 1); len(matches) > 0 {
			res.Matched = true
			res.MatchedName = matches[0].CanonicalName
			res.FoodID = matches[0].FoodID
			report.MatchedCount++
		}
		report.Details = append(report.Details, res)
	}
	report.MatchRatePercent = roundTo(float64(report.MatchedCount)/float64(report.TestCount)*100, 1)
	report.Passed = report.MatchRatePercent >= commonFoodsTargetPercent
	return report, nil
}

func (s *NutritionService) recordQuery(matched bool) {
	s.totalQueries.Add(1)
	if matched {
		s.successfulMatches.Add(1)
	} else {
		s.failedMatches.Add(1)
	}
}

// generateCacheKey creates a cache key for a resolve request.
// Format: "resolve:{store fingerprint}:{mode}:{limit}:{quoted category}:{quoted query}"
// The fingerprint follows the dataset content, so a shared cache never mixes
// results from different data across reloads, restarts or replicas.
func generateCacheKey(fingerprint string, mode domain.MatchMode, category string, limit int, query string) string {
	// cascading compares raw text, so its key keeps the query as typed
	keyQuery := query
	if mode == domain.ModeRanked {
		keyQuery = Normalize(query)
	}
	return fmt.Sprintf("resolve:%s:%s:%d:%q:%q", fingerprint, mode, limit, category, keyQuery)
}

// getFromCache retrieves resolve results from cache
func (s *NutritionService) getFromCache(ctx context.Context, key string) ([]domain.MatchResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var results []domain.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.log.Warn("cache evict failed", "key", key, "error", delErr)
		}
		return nil, domain.ErrCacheMiss
	}
	if results == nil {
		results = []domain.MatchResult{}
	}
	return results, nil
}

// setInCache stores resolve results in cache
func (s *NutritionService) setInCache(ctx context.Context, key string, results []domain.MatchResult) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, raw, s.cacheTTL)
}

func validateGrams(grams float64) error {
	if !(grams > 0) || math.IsInf(grams, 1) {
		return fmt.Errorf("%w: grams must be greater than 0", domain.ErrInvalidRequest)
	}
	return nil
}
