package usecase

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// Scoring constants
const (
	exactMatchScore  = 1.0
	containmentScore = 0.85
	bigramWindow     = 2
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
}

// MatchingService ranks store records against a query. It offers two
// strategies over the same records: ranked similarity (Rank) and the
// cascading exact-then-fuzzy search (Cascade).
type MatchingService struct {
	enableDebugLogging bool
	log                *logger.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, log *logger.Logger) *MatchingService {
	if log == nil {
		log = logger.Nop()
	}
	return &MatchingService{
		enableDebugLogging: config.EnableDebugLogging,
		log:                log.With("service", "MatchingService"),
	}
}

// Match dispatches to the strategy named by mode
func (s *MatchingService) Match(store *Store, mode domain.MatchMode, query, category string, limit int) []domain.MatchResult {
	if mode == domain.ModeCascading {
		return s.Cascade(store, query, category, limit)
	}
	return s.Rank(store, query, category, limit)
}

// Score compares two normalized strings: 1.0 when equal, 0.85 when one contains
// the other, otherwise a Levenshtein ratio in [0,1]. Empty input scores 0.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return exactMatchScore
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return containmentScore
	}
	return levenshteinRatio(a, b)
}

// levenshteinRatio returns 1 - distance/maxLen over runes
func levenshteinRatio(a, b string) float64 {
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// Rank scores every record (optionally filtered by category) against the
// query. Records scoring 0 are dropped; the rest are ordered by score with
// ties kept in store order.
func (s *MatchingService) Rank(store *Store, query, category string, limit int) []domain.MatchResult {
	queryNorm := Normalize(query)
	if queryNorm == "" || store == nil {
		return []domain.MatchResult{}
	}

	if s.enableDebugLogging {
		s.log.Debug("rank", "query", query, "normalized", queryNorm, "category", category)
	}

	results := make([]domain.MatchResult, 0)
	for _, rec := range store.records {
		if !inCategory(rec.Category, category) {
			continue
		}

		nameScore := Score(queryNorm, rec.nameNorm)
		aliasScore := 0.0
		for _, a := range rec.aliasNorms {
			if sc := Score(queryNorm, a); sc > aliasScore {
				aliasScore = sc
			}
		}

		best := max(nameScore, aliasScore)
		if best <= 0 {
			continue
		}

		field := domain.FieldName
		if aliasScore > nameScore {
			field = domain.FieldAlias
		}
		results = append(results, domain.MatchResult{
			FoodID:        rec.FoodID,
			CanonicalName: rec.CanonicalName,
			Category:      rec.Category,
			MatchedField:  field,
			Score:         roundNutrient(best),
			Strategy:      domain.StrategySimilarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if s.enableDebugLogging && len(results) > 0 {
		s.log.Debug("rank best", "food_id", results[0].FoodID, "name", results[0].CanonicalName, "score", results[0].Score)
	}
	return results
}

// Cascade runs, in order, until one pass yields records:
//  1. exact case-sensitive canonical name match, topped up with raw-query containment hits
//  2. containment scan for each curated expansion of the query
//  3. containment scan for the raw query
//  4. containment scan for every 2-rune window of the query
//
// An empty result after all passes is a normal "no match" outcome.
func (s *MatchingService) Cascade(store *Store, query, category string, limit int) []domain.MatchResult {
	if query == "" || store == nil {
		return []domain.MatchResult{}
	}

	// 1. exact
	var exact []int
	for _, pos := range store.index.exactName(query) {
		if inCategory(store.records[pos].Category, category) {
			exact = append(exact, pos)
		}
	}
	if len(exact) > 0 {
		results := make([]domain.MatchResult, 0, len(exact))
		taken := make(map[int]bool, len(exact))
		for _, pos := range exact {
			if limit > 0 && len(results) >= limit {
				break
			}
			taken[pos] = true
			results = append(results, s.cascadeResult(store.records[pos], query, domain.StrategyExact, domain.FieldName))
		}
		for _, pos := range s.containing(store, query, category, 0) {
			if limit > 0 && len(results) >= limit {
				break
			}
			if taken[pos] {
				continue
			}
			results = append(results, s.cascadeResult(store.records[pos], query, domain.StrategySubstring, domain.FieldName))
		}
		return s.logCascade(query, domain.StrategyExact, results)
	}

	// 2. curated expansions
	for _, term := range store.Expand(query) {
		if hits := s.containing(store, term, category, limit); len(hits) > 0 {
			field := domain.FieldAlias
			if term == query {
				field = domain.FieldName
			}
			return s.logCascade(query, domain.StrategySynonym, s.cascadeResults(store, hits, term, domain.StrategySynonym, field))
		}
	}

	// 3. raw substring
	if hits := s.containing(store, query, category, limit); len(hits) > 0 {
		return s.logCascade(query, domain.StrategySubstring, s.cascadeResults(store, hits, query, domain.StrategySubstring, domain.FieldName))
	}

	// 4. bigram windows
	runes := []rune(query)
	if len(runes) >= bigramWindow {
		for i := 0; i+bigramWindow <= len(runes); i++ {
			window := string(runes[i : i+bigramWindow])
			if hits := s.containing(store, window, category, limit); len(hits) > 0 {
				return s.logCascade(query, domain.StrategyBigram, s.cascadeResults(store, hits, window, domain.StrategyBigram, domain.FieldName))
			}
		}
	}

	return s.logCascade(query, "none", []domain.MatchResult{})
}

// containing returns positions of records whose canonical name contains term, in store order
func (s *MatchingService) containing(store *Store, term, category string, limit int) []int {
	if term == "" {
		return nil
	}
	var hits []int
	for pos, rec := range store.records {
		if !inCategory(rec.Category, category) {
			continue
		}
		if strings.Contains(rec.CanonicalName, term) {
			hits = append(hits, pos)
			if limit > 0 && len(hits) >= limit {
				break
			}
		}
	}
	return hits
}

func (s *MatchingService) cascadeResults(store *Store, positions []int, term, strategy, field string) []domain.MatchResult {
	out := make([]domain.MatchResult, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.cascadeResult(store.records[pos], term, strategy, field))
	}
	return out
}

// cascadeResult reports the similarity between the term that hit and the
// canonical name so cascading results carry an explainable score too
func (s *MatchingService) cascadeResult(rec indexedRecord, term, strategy, field string) domain.MatchResult {
	return domain.MatchResult{
		FoodID:        rec.FoodID,
		CanonicalName: rec.CanonicalName,
		Category:      rec.Category,
		MatchedField:  field,
		Score:         roundNutrient(Score(Normalize(term), rec.nameNorm)),
		Strategy:      strategy,
	}
}

func (s *MatchingService) logCascade(query, step string, results []domain.MatchResult) []domain.MatchResult {
	if s.enableDebugLogging {
		s.log.Debug("cascade", "query", query, "step", step, "count", len(results))
	}
	return results
}

// inCategory applies the optional category filter (containment, like the search API)
func inCategory(recordCategory, filter string) bool {
	return filter == "" || strings.Contains(recordCategory, filter)
}
