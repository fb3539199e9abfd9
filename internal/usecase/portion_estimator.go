package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nutrimatch/backend/internal/domain"
)

// Portion profile names
const (
	ProfileGeneral     = "general"
	ProfileHighProtein = "high-protein"
)

// Points within a portion range
const (
	PointMin = "min"
	PointMid = "mid"
	PointMax = "max"
)

type gramRange struct {
	min float64
	max float64
}

type portionProfile struct {
	ranges   map[string]gramRange
	fallback gramRange
}

// portionProfiles are practical serving presets per food category.
// general: typical takeaway / lunchbox plate, staple-heavy, medium overall.
// high-protein: fitness plate, more protein and vegetables, controlled staples.
var portionProfiles = map[string]portionProfile{
	ProfileGeneral: {
		fallback: gramRange{100, 250},
		ranges: map[string]gramRange{
			"穀物類":        {180, 350},
			"澱粉類":        {180, 350},
			"肉類":         {90, 200},
			"魚貝類":        {90, 200},
			"蛋類":         {50, 120},
			"豆類":         {100, 250},
			"蔬菜類":        {120, 300},
			"菇類":         {60, 200},
			"水果類":        {120, 300},
			"乳品類":        {200, 350},
			"飲料類":        {300, 600},
			"油脂類":        {5, 25},
			"堅果及種子類":     {10, 35},
			"糕餅點心類":      {60, 200},
			"調味料及香辛料類":   {5, 25},
			"藻類":         {10, 60},
			"糖類":         {5, 25},
			"加工調理食品及其他類": {200, 450},
		},
	},
	ProfileHighProtein: {
		fallback: gramRange{120, 280},
		ranges: map[string]gramRange{
			"穀物類":        {120, 250},
			"澱粉類":        {120, 250},
			"肉類":         {140, 280},
			"魚貝類":        {140, 280},
			"蛋類":         {50, 150},
			"豆類":         {150, 300},
			"蔬菜類":        {150, 350},
			"菇類":         {80, 250},
			"水果類":        {100, 250},
			"乳品類":        {200, 400},
			"飲料類":        {300, 700},
			"油脂類":        {5, 20},
			"堅果及種子類":     {10, 30},
			"糕餅點心類":      {50, 150},
			"調味料及香辛料類":   {5, 20},
			"藻類":         {10, 60},
			"糖類":         {5, 20},
			"加工調理食品及其他類": {180, 400},
		},
	},
}

// profileAliases accepts the names used by older clients
var profileAliases = map[string]string{
	"bento":   ProfileGeneral,
	"fitness": ProfileHighProtein,
	"protein": ProfileHighProtein,
}

// PortionEstimator guesses a plausible gram range for a category when the
// caller has no explicit quantity. It never overrides supplied grams.
type PortionEstimator struct {
	defaultProfile string
}

// NewPortionEstimator creates an estimator; an unknown default falls back to "general"
func NewPortionEstimator(defaultProfile string) *PortionEstimator {
	name, ok := canonicalProfile(defaultProfile)
	if !ok {
		name = ProfileGeneral
	}
	return &PortionEstimator{defaultProfile: name}
}

// Profiles lists the available profile names
func (e *PortionEstimator) Profiles() []string {
	names := make([]string, 0, len(portionProfiles))
	for name := range portionProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfile returns the profile applied when none or an unknown one is requested
func (e *PortionEstimator) DefaultProfile() string { return e.defaultProfile }

// Estimate returns the gram range of category under profile. point selects
// which value of the range becomes Estimated ("min", "mid" or "max"; "" means mid).
// Unknown categories use the profile default range and unknown profiles use
// the default profile; both are flagged on the result rather than treated as errors.
func (e *PortionEstimator) Estimate(category, profile, point string) (domain.PortionEstimate, error) {
	point = strings.ToLower(strings.TrimSpace(point))
	if point == "" {
		point = PointMid
	}
	if point != PointMin && point != PointMid && point != PointMax {
		return domain.PortionEstimate{}, fmt.Errorf("%w: unknown portion point %q", domain.ErrInvalidRequest, point)
	}

	name, ok := canonicalProfile(profile)
	profileDefault := false
	if !ok {
		name = e.defaultProfile
		profileDefault = strings.TrimSpace(profile) != ""
	}
	p := portionProfiles[name]

	category = strings.TrimSpace(category)
	r, found := p.ranges[category]
	if !found {
		r = p.fallback
	}

	est := domain.PortionEstimate{
		Category:        category,
		Profile:         name,
		MinGrams:        r.min,
		MaxGrams:        r.max,
		Midpoint:        roundTo((r.min+r.max)/2, 1),
		Label:           point,
		CategoryDefault: !found,
		ProfileDefault:  profileDefault,
	}
	switch point {
	case PointMin:
		est.Estimated = est.MinGrams
	case PointMax:
		est.Estimated = est.MaxGrams
	default:
		est.Estimated = est.Midpoint
	}
	return est, nil
}

func canonicalProfile(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := profileAliases[name]; ok {
		name = alias
	}
	if _, ok := portionProfiles[name]; ok {
		return name, true
	}
	return "", false
}
