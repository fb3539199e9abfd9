package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
)

// indexedRecord is a FoodRecord plus its precomputed normalized forms
type indexedRecord struct {
	domain.FoodRecord
	nameNorm   string
	aliasNorms []string
}

// Store is one immutable generation of the nutrient database. All methods are
// safe for concurrent use because nothing mutates a Store after NewStore returns.
type Store struct {
	records    []indexedRecord
	byID       map[string]int
	index      *AliasIndex
	categories []string
	generation  uint64
	fingerprint string
	builtAt     time.Time
}

// NewStore validates records and builds the id map and alias index in one pass.
// Record order is preserved and used as the tie-breaker for ranking.
func NewStore(records []domain.FoodRecord, synonyms []domain.SynonymGroup) (*Store, error) {
	s := &Store{
		records: make([]indexedRecord, 0, len(records)),
		byID:    make(map[string]int, len(records)),
		builtAt: time.Now(),
	}

	categorySet := make(map[string]bool)
	for i, r := range records {
		id := strings.TrimSpace(r.FoodID)
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has an empty food_id", domain.ErrDatasetInvalid, i)
		}
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate food_id %q", domain.ErrDatasetInvalid, id)
		}

		rec := domain.FoodRecord{
			FoodID:        id,
			Category:      strings.TrimSpace(r.Category),
			CanonicalName: strings.TrimSpace(r.CanonicalName),
			Aliases:       dedupeAliases(r.Aliases),
			Per100g:       r.Per100g.Map(sanitizeNutrient),
		}

		ir := indexedRecord{FoodRecord: rec, nameNorm: Normalize(rec.CanonicalName)}
		for _, a := range rec.Aliases {
			if n := Normalize(a); n != "" {
				ir.aliasNorms = append(ir.aliasNorms, n)
			}
		}

		s.byID[id] = len(s.records)
		s.records = append(s.records, ir)
		if rec.Category != "" {
			categorySet[rec.Category] = true
		}
	}

	s.index = newAliasIndex(synonyms, s.records)

	s.categories = make([]string, 0, len(categorySet))
	for c := range categorySet {
		s.categories = append(s.categories, c)
	}
	sort.Strings(s.categories)

	s.fingerprint = fingerprint(s.records, synonyms)
	return s, nil
}

// fingerprint hashes the cleaned records and the synonym table. Two stores
// built from the same data share a fingerprint in any process.
func fingerprint(records []indexedRecord, synonyms []domain.SynonymGroup) string {
	h := sha256.New()
	for _, r := range records {
		fmt.Fprintf(h, "r%q%q%q%q%v\n", r.FoodID, r.Category, r.CanonicalName, r.Aliases, r.Per100g)
	}
	for _, g := range synonyms {
		fmt.Fprintf(h, "s%q%q\n", g.Canonical, g.Aliases)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// sanitizeNutrient keeps per-100g values defined, non-negative and on the shared precision
func sanitizeNutrient(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return roundNutrient(v)
}

func dedupeAliases(aliases []string) []string {
	if len(aliases) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// Lookup returns a copy of the record with the given id
func (s *Store) Lookup(foodID string) (domain.FoodRecord, bool) {
	pos, ok := s.byID[strings.TrimSpace(foodID)]
	if !ok {
		return domain.FoodRecord{}, false
	}
	rec := s.records[pos].FoodRecord
	rec.Aliases = slices.Clone(rec.Aliases)
	return rec, true
}

// Len returns the number of records in this generation
func (s *Store) Len() int { return len(s.records) }

// Generation returns the catalog generation this store was published as (0 if never published)
func (s *Store) Generation() uint64 { return s.generation }

// Fingerprint identifies the store's content independently of the generation counter
func (s *Store) Fingerprint() string { return s.fingerprint }

// BuiltAt returns when the store finished building
func (s *Store) BuiltAt() time.Time { return s.builtAt }

// Categories returns the sorted distinct categories
func (s *Store) Categories() []string { return slices.Clone(s.categories) }

// Expand proxies the alias index expansion
func (s *Store) Expand(query string) []string { return s.index.Expand(query) }

// SynonymGroups returns the number of curated groups indexed
func (s *Store) SynonymGroups() int { return s.index.Groups() }
