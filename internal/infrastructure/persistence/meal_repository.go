package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nutrimatch/backend/internal/domain"
)

// MealRepository implements domain.MealRepository on gorm
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// orderedItems preloads items in the order they were logged
func orderedItems(tx *gorm.DB) *gorm.DB {
	return tx.Order("position ASC")
}

// Save writes the meal and all its items in one transaction
func (r *MealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	row := toMealRow(meal)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(row).Error; err != nil {
			return fmt.Errorf("insert meal: %w", err)
		}
		if len(row.Items) == 0 {
			return nil
		}
		if err := tx.Create(&row.Items).Error; err != nil {
			return fmt.Errorf("insert meal items: %w", err)
		}
		return nil
	})
}

// Get returns one meal of the user with its items
func (r *MealRepository) Get(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	var row mealRow
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMealNotFound, mealID)
	}
	if err != nil {
		return nil, err
	}
	meal := row.toDomain()
	return &meal, nil
}

// List returns the user's most recent meals, newest first
func (r *MealRepository) List(ctx context.Context, userID string, limit int) ([]domain.Meal, error) {
	var rows []mealRow
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("user_id = ?", userID).
		Order("eaten_at DESC").Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainMeals(rows), nil
}

// ListSince returns the user's meals eaten at or after since, newest first
func (r *MealRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Meal, error) {
	var rows []mealRow
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("user_id = ? AND eaten_at >= ?", userID, since.UTC()).
		Order("eaten_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainMeals(rows), nil
}

// Delete removes the meal and its items in one transaction
func (r *MealRepository) Delete(ctx context.Context, userID, mealID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&mealRow{}).Where("id = ? AND user_id = ?", mealID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", domain.ErrMealNotFound, mealID)
		}
		if err := tx.Where("meal_id = ?", mealID).Delete(&mealItemRow{}).Error; err != nil {
			return fmt.Errorf("delete meal items: %w", err)
		}
		if err := tx.Where("id = ?", mealID).Delete(&mealRow{}).Error; err != nil {
			return fmt.Errorf("delete meal: %w", err)
		}
		return nil
	})
}

func toDomainMeals(rows []mealRow) []domain.Meal {
	meals := make([]domain.Meal, 0, len(rows))
	for i := range rows {
		meals = append(meals, rows[i].toDomain())
	}
	return meals
}
