package domain

import "fmt"

// MatchMode selects the ranking strategy of the matching engine
type MatchMode string

const (
	// ModeRanked scores every record and returns them best-first
	ModeRanked MatchMode = "ranked"
	// ModeCascading runs exact, synonym, substring and bigram passes and stops at the first hit
	ModeCascading MatchMode = "cascading"
)

// ParseMatchMode maps a user-supplied mode name onto a MatchMode.
// An empty string selects ModeRanked.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "", "ranked", "similarity":
		return ModeRanked, nil
	case "cascading", "cascade", "search":
		return ModeCascading, nil
	}
	return "", fmt.Errorf("%w: unknown match mode %q", ErrInvalidRequest, s)
}

// Matched field values reported on a MatchResult
const (
	FieldName  = "name"
	FieldAlias = "alias"
)

// Strategy values reported on a MatchResult, naming the pass that produced it
const (
	StrategySimilarity = "similarity"
	StrategyExact      = "exact"
	StrategySynonym    = "synonym"
	StrategySubstring  = "substring"
	StrategyBigram     = "bigram"
)

// ResolveRequest is the input of a resolve operation
type ResolveRequest struct {
	Query    string    `json:"query"`
	Limit    int       `json:"limit"`
	Mode     MatchMode `json:"mode"`
	Category string    `json:"category,omitempty"`
}

// MatchResult is one ranked candidate record for a query
type MatchResult struct {
	FoodID        string  `json:"foodId"`
	CanonicalName string  `json:"canonicalName"`
	Category      string  `json:"category"`
	MatchedField  string  `json:"matchedField"`
	Score         float64 `json:"score"`
	Strategy      string  `json:"strategy"`
}

// ResolveResponse is the outcome of a resolve operation. An empty Results slice
// is a normal "no match" outcome.
type ResolveResponse struct {
	Query      string        `json:"query"`
	Mode       MatchMode     `json:"mode"`
	Count      int           `json:"count"`
	Results    []MatchResult `json:"results"`
	Generation uint64        `json:"generation"`
}
