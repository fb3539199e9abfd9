package usecase

import (
	"sort"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
)

const dayKeyLayout = "2006-01-02"

// Sum adds nutrient vectors key by key. An empty input yields the zero vector.
// Rounding happens once on the total so summation order does not leak into the result.
func Sum(vectors []domain.NutrientVector) domain.NutrientVector {
	var total domain.NutrientVector
	for _, v := range vectors {
		total = total.Add(v)
	}
	return total.Map(roundNutrient)
}

// SumByDay buckets entries by the calendar date of their timestamp in loc
// (nil keeps each timestamp's own location) and returns the grand total with
// one total per day, ordered by date.
func SumByDay(entries []domain.TimedVector, loc *time.Location) (domain.NutrientVector, []domain.DayTotal) {
	byDay := make(map[string][]domain.NutrientVector)
	all := make([]domain.NutrientVector, 0, len(entries))

	for _, e := range entries {
		ts := e.Timestamp
		if loc != nil {
			ts = ts.In(loc)
		}
		key := ts.Format(dayKeyLayout)
		byDay[key] = append(byDay[key], e.Nutrients)
		all = append(all, e.Nutrients)
	}

	days := make([]domain.DayTotal, 0, len(byDay))
	for key, vectors := range byDay {
		days = append(days, domain.DayTotal{
			Date:      key,
			Meals:     len(vectors),
			Nutrients: Sum(vectors),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return Sum(all), days
}
