package domain

import "time"

// Meal sources
const (
	SourceManual = "manual"
	SourceVision = "vision"
)

// MealItem is one logged food entry with the nutrient snapshot captured at creation time
type MealItem struct {
	ID           string         `json:"mealItemId"`
	MealID       string         `json:"-"`
	FoodID       string         `json:"foodId"`
	FoodName     string         `json:"foodName"`
	Grams        float64        `json:"grams"`
	PortionLabel string         `json:"portionLabel,omitempty"`
	Confidence   *float64       `json:"confidence,omitempty"`
	RawText      string         `json:"rawText,omitempty"`
	Nutrients    NutrientVector `json:"nutrients"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Meal is an ordered set of items eaten together
type Meal struct {
	ID        string         `json:"mealId"`
	UserID    string         `json:"userId"`
	Source    string         `json:"source"`
	Note      string         `json:"note,omitempty"`
	EatenAt   time.Time      `json:"eatenAt"`
	Nutrients NutrientVector `json:"nutrients"`
	Items     []MealItem     `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
}

// MealItemInput is a requested meal item. Grams is optional; when nil the
// portion estimator supplies a value.
type MealItemInput struct {
	FoodID       string   `json:"foodId" binding:"required"`
	Grams        *float64 `json:"grams,omitempty"`
	PortionLabel string   `json:"portionLabel,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	RawText      string   `json:"rawText,omitempty"`
}

// CreateMealRequest is the input for logging a meal
type CreateMealRequest struct {
	UserID         string          `json:"-"`
	Items          []MealItemInput `json:"items" binding:"required,dive"`
	Source         string          `json:"source,omitempty"`
	Note           string          `json:"note,omitempty"`
	EatenAt        *time.Time      `json:"eatenAt,omitempty"`
	PortionProfile string          `json:"portionProfile,omitempty"`
}

// TimedVector is a nutrient vector stamped with the time it was eaten
type TimedVector struct {
	Timestamp time.Time      `json:"timestamp"`
	Nutrients NutrientVector `json:"nutrients"`
}

// DayTotal is the summed nutrients of one calendar day
type DayTotal struct {
	Date      string         `json:"date"` // YYYY-MM-DD
	Meals     int            `json:"meals"`
	Nutrients NutrientVector `json:"nutrients"`
}

// PeriodSummary is the aggregate over a window of meals. It is derived, never persisted.
type PeriodSummary struct {
	UserID     string         `json:"userId,omitempty"`
	From       time.Time      `json:"from,omitempty"`
	To         time.Time      `json:"to,omitempty"`
	Days       int            `json:"days,omitempty"`
	TotalMeals int            `json:"totalMeals"`
	Total      NutrientVector `json:"totalNutrients"`
	Daily      []DayTotal     `json:"dailyBreakdown"`
	Meals      []Meal         `json:"meals,omitempty"`
}
