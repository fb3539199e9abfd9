package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// QueryPreprocessor splits free text such as "雞胸肉 150g" into a food query
// and an explicit gram quantity
type QueryPreprocessor struct {
	enableDebugLogging bool
	log                *logger.Logger
}

// Compiled regex patterns for query preprocessing
var (
	// Matches a quantity and its unit, e.g. "150g", "200 克", "0.5kg", "1.2 公斤".
	// The trailing group keeps "g" from matching the start of a word like "grape".
	quantityPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(公斤|千克|公克|克|kg|grams?|g)([^a-z]|$)`)

	// Portion words that carry no food meaning once the quantity is gone
	portionNoisePattern = regexp.MustCompile(`(?i)\b(about|approx|approximately|around|of)\b|約|大約|左右`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// unitGrams converts a unit token to grams per unit
var unitGrams = map[string]float64{
	"公斤": 1000, "千克": 1000, "kg": 1000,
	"公克": 1, "克": 1, "g": 1, "gram": 1, "grams": 1,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool, log *logger.Logger) *QueryPreprocessor {
	if log == nil {
		log = logger.Nop()
	}
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
		log:                log.With("service", "QueryPreprocessor"),
	}
}

// ExtractQuantity returns the food text with the first quantity removed and
// that quantity in grams. ok is false when no positive quantity was found.
func (p *QueryPreprocessor) ExtractQuantity(text string) (query string, grams float64, ok bool) {
	original := text
	loc := quantityPattern.FindStringSubmatchIndex(text)
	if loc != nil {
		value, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		unit := strings.ToLower(text[loc[4]:loc[5]])
		if err == nil && value > 0 {
			grams = value * unitGrams[unit]
			ok = grams > 0
			// drop number and unit, keep whatever followed the unit
			text = text[:loc[2]] + " " + text[loc[5]:]
		}
	}

	query = p.cleanQuery(text)

	if p.enableDebugLogging {
		p.log.Debug("preprocess", "input", original, "query", query, "grams", grams, "found", ok)
	}
	return query, grams, ok
}

// cleanQuery removes portion noise and orphaned punctuation
func (p *QueryPreprocessor) cleanQuery(s string) string {
	s = portionNoisePattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,，、;；:：-")
}
