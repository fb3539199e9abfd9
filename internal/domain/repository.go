package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized values
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MealRepository persists meals together with their items. Save and Delete
// must be atomic per meal.
type MealRepository interface {
	Save(ctx context.Context, meal *Meal) error
	Get(ctx context.Context, userID, mealID string) (*Meal, error)
	List(ctx context.Context, userID string, limit int) ([]Meal, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]Meal, error)
	Delete(ctx context.Context, userID, mealID string) error
}

// FoodLookup resolves food ids against the current store generation.
// GetRecords reads every id from the same generation and returns the records
// in input order.
type FoodLookup interface {
	GetRecords(ctx context.Context, foodIDs []string) ([]FoodRecord, error)
}
