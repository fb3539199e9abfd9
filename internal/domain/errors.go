package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters fail validation
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrFoodNotFound is returned when a food_id is not present in the current store
	ErrFoodNotFound = errors.New("food not found in nutrient store")

	// ErrMealNotFound is returned when a meal does not exist for the requesting user
	ErrMealNotFound = errors.New("meal not found")

	// ErrDatasetInvalid is returned when the source dataset cannot be turned into a store
	ErrDatasetInvalid = errors.New("nutrition dataset invalid")

	// ErrStoreNotReady is returned when no store generation has been loaded yet
	ErrStoreNotReady = errors.New("nutrient store not loaded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
