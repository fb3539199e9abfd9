package usecase

import (
	"math"

	"github.com/nutrimatch/backend/internal/domain"
)

// nutrientPrecision is the number of decimals kept for every stored or derived nutrient value
const nutrientPrecision = 4

// roundTo rounds v half away from zero to the given number of decimals
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundNutrient(v float64) float64 {
	return roundTo(v, nutrientPrecision)
}

// Scale converts a per-100g vector to the given gram quantity. Grams must be
// positive; callers validate before calling.
func Scale(per100g domain.NutrientVector, grams float64) domain.NutrientVector {
	return per100g.Map(func(v float64) float64 {
		return roundNutrient(v * grams / 100)
	})
}
