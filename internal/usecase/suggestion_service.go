package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// Suggestion limits
const (
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20
	suggestConcurrency  = 4
)

// SuggestionService turns model-produced food candidates into matched records
// with portion estimates
type SuggestionService struct {
	catalog  *Catalog
	matcher  *MatchingService
	portions *PortionEstimator
	log      *logger.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(catalog *Catalog, matcher *MatchingService, portions *PortionEstimator, log *logger.Logger) *SuggestionService {
	if log == nil {
		log = logger.Nop()
	}
	if portions == nil {
		portions = NewPortionEstimator(ProfileGeneral)
	}
	return &SuggestionService{
		catalog:  catalog,
		matcher:  matcher,
		portions: portions,
		log:      log.With("service", "SuggestionService"),
	}
}

// Suggest resolves every candidate (up to the limit) to its best record with
// ranked similarity. Candidates come from the request or, when absent, from
// the JSON object embedded in RawResponse.
func (s *SuggestionService) Suggest(ctx context.Context, req domain.SuggestRequest) (*domain.SuggestResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultSuggestLimit
	}
	if limit < 0 || limit > maxSuggestLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, maxSuggestLimit)
	}

	resp := &domain.SuggestResponse{}
	candidates := req.Candidates
	if len(candidates) == 0 {
		if strings.TrimSpace(req.RawResponse) == "" {
			return nil, fmt.Errorf("%w: candidates or raw response required", domain.ErrInvalidRequest)
		}
		parsed, err := ParseModelOutput(req.RawResponse)
		if err != nil {
			return nil, err
		}
		candidates = parsed.FoodCandidates
		resp.Vision = parsed
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	resp.Generation = store.Generation()

	items := make([]domain.Suggestion, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.suggestOne(store, c, req.Profile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Items = items
	s.log.Info("suggestions resolved", "candidates", len(items), "generation", resp.Generation)
	return resp, nil
}

func (s *SuggestionService) suggestOne(store *Store, c domain.FoodCandidate, profile string) domain.Suggestion {
	item := domain.Suggestion{Name: c.Name, Confidence: c.Confidence}

	category := ""
	if matches := s.matcher.Rank(store, c.Name, "", 1); len(matches) > 0 {
		m := matches[0]
		item.Match = &m
		category = m.Category
	} else {
		item.Notes = "no matching food"
	}

	est, err := s.portions.Estimate(category, profile, PointMid)
	if err != nil {
		// point is fixed, so only a broken estimator lands here
		item.Notes = err.Error()
		return item
	}
	item.Portion = est
	return item
}

// Parse extracts the model payload and looks up the record best matching the
// top candidate
func (s *SuggestionService) Parse(ctx context.Context, raw string) (*domain.ParseResponse, error) {
	parsed, err := ParseModelOutput(raw)
	if err != nil {
		return nil, err
	}
	resp := &domain.ParseResponse{Parsed: *parsed}
	if len(parsed.FoodCandidates) == 0 {
		return resp, nil
	}

	store, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	if matches := s.matcher.Rank(store, parsed.FoodCandidates[0].Name, "", 1); len(matches) > 0 {
		if rec, ok := store.Lookup(matches[0].FoodID); ok {
			resp.DBMatch = &rec
		}
	}
	return resp, nil
}

// ParseModelOutput decodes the first balanced JSON object in a model
// response, ignoring any prose or code fences around it
func ParseModelOutput(raw string) (*domain.VisionResult, error) {
	snippet, err := firstJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var result domain.VisionResult
	if err := json.Unmarshal([]byte(snippet), &result); err != nil {
		return nil, fmt.Errorf("%w: decode model output: %v", domain.ErrInvalidRequest, err)
	}
	if result.FoodCandidates == nil {
		return nil, fmt.Errorf("%w: model output has no food_candidates", domain.ErrInvalidRequest)
	}

	kept := result.FoodCandidates[:0]
	for _, c := range result.FoodCandidates {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name != "" {
			kept = append(kept, c)
		}
	}
	result.FoodCandidates = kept
	return &result, nil
}

// firstJSONObject returns the text from the first '{' to its matching '}'.
// Braces inside JSON strings are skipped.
func firstJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no json object found", domain.ErrInvalidRequest)
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: incomplete json object", domain.ErrInvalidRequest)
}
