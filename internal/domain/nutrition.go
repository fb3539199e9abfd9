package domain

import "time"

// NutrientVector is the fixed-key nutrient tuple shared by records, servings and totals.
// Energy is kcal, sodium and potassium are mg, everything else is grams.
type NutrientVector struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Sodium    float64 `json:"sodium"`
	Fiber     float64 `json:"fiber"`
	Potassium float64 `json:"potassium"`
}

// Map applies fn to every nutrient key and returns the resulting vector
func (v NutrientVector) Map(fn func(float64) float64) NutrientVector {
	return NutrientVector{
		Calories:  fn(v.Calories),
		Protein:   fn(v.Protein),
		Carbs:     fn(v.Carbs),
		Fat:       fn(v.Fat),
		Sodium:    fn(v.Sodium),
		Fiber:     fn(v.Fiber),
		Potassium: fn(v.Potassium),
	}
}

// Add returns the key-wise sum of two vectors
func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories:  v.Calories + o.Calories,
		Protein:   v.Protein + o.Protein,
		Carbs:     v.Carbs + o.Carbs,
		Fat:       v.Fat + o.Fat,
		Sodium:    v.Sodium + o.Sodium,
		Fiber:     v.Fiber + o.Fiber,
		Potassium: v.Potassium + o.Potassium,
	}
}

// FoodRecord is one canonical entry of the nutrient database. Records are
// immutable once a store generation has been built.
type FoodRecord struct {
	FoodID        string         `json:"foodId"`
	Category      string         `json:"category"`
	CanonicalName string         `json:"canonicalName"`
	Aliases       []string       `json:"aliases,omitempty"`
	Per100g       NutrientVector `json:"per100g"`
}

// Serving is a nutrient vector computed for a concrete gram quantity of one record
type Serving struct {
	FoodID    string         `json:"foodId"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Grams     float64        `json:"grams"`
	Nutrients NutrientVector `json:"nutrients"`
}

// PortionEstimate is a heuristic gram range for a category under a named profile
type PortionEstimate struct {
	Category  string  `json:"category"`
	Profile   string  `json:"profile"`
	MinGrams  float64 `json:"gramsMin"`
	MaxGrams  float64 `json:"gramsMax"`
	Midpoint  float64 `json:"gramsMid"`
	Estimated float64 `json:"estimatedGrams"`
	Label     string  `json:"label"` // "min", "mid" or "max"

	// CategoryDefault is set when the category had no entry and the profile default range was used
	CategoryDefault bool `json:"categoryDefault"`
	// ProfileDefault is set when the requested profile was unknown and the default profile was applied
	ProfileDefault bool `json:"profileDefault"`
}

// SynonymGroup is one curated set of interchangeable food names
type SynonymGroup struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Aliases   []string `json:"aliases" yaml:"aliases"`
}

// Members returns the canonical name followed by its aliases
func (g SynonymGroup) Members() []string {
	out := make([]string, 0, len(g.Aliases)+1)
	out = append(out, g.Canonical)
	return append(out, g.Aliases...)
}

// StoreStats describes the currently served store generation and query counters
type StoreStats struct {
	Generation        uint64    `json:"generation"`
	LoadedAt          time.Time `json:"loadedAt,omitempty"`
	TotalFoods        int       `json:"totalFoods"`
	TotalCategories   int       `json:"totalCategories"`
	TotalQueries      int64     `json:"totalQueries"`
	SuccessfulMatches int64     `json:"successfulMatches"`
	FailedMatches     int64     `json:"failedMatches"`
	MatchRatePercent  float64   `json:"matchRatePercent"`
	Status            string    `json:"status"`
}
