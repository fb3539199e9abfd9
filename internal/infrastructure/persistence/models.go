package persistence

import (
	"time"

	"gorm.io/datatypes"

	"github.com/nutrimatch/backend/internal/domain"
)

// mealRow is the stored form of a meal. Nutrient snapshots are JSON columns
// so adding a nutrient key needs no migration.
type mealRow struct {
	ID        string                                    `gorm:"primaryKey;size:36"`
	UserID    string                                    `gorm:"size:128;not null;index:idx_meals_user_eaten,priority:1"`
	Source    string                                    `gorm:"size:32;not null"`
	Note      string                                    `gorm:"type:text"`
	EatenAt   time.Time                                 `gorm:"not null;index:idx_meals_user_eaten,priority:2"`
	Nutrients datatypes.JSONType[domain.NutrientVector] `gorm:"not null"`
	CreatedAt time.Time                                 `gorm:"not null"`
	Items     []mealItemRow                             `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
}

func (mealRow) TableName() string { return "meals" }

// mealItemRow is one stored meal item; Position keeps request order
type mealItemRow struct {
	ID           string                                    `gorm:"primaryKey;size:36"`
	MealID       string                                    `gorm:"size:36;not null;index"`
	Position     int                                       `gorm:"not null"`
	FoodID       string                                    `gorm:"size:64;not null"`
	FoodName     string                                    `gorm:"size:255;not null"`
	Grams        float64                                   `gorm:"not null"`
	PortionLabel string                                    `gorm:"size:64"`
	Confidence   *float64                                  `gorm:"column:confidence"`
	RawText      string                                    `gorm:"type:text"`
	Nutrients    datatypes.JSONType[domain.NutrientVector] `gorm:"not null"`
	CreatedAt    time.Time                                 `gorm:"not null"`
}

func (mealItemRow) TableName() string { return "meal_items" }

func toMealRow(m *domain.Meal) *mealRow {
	row := &mealRow{
		ID:        m.ID,
		UserID:    m.UserID,
		Source:    m.Source,
		Note:      m.Note,
		EatenAt:   m.EatenAt.UTC(),
		Nutrients: datatypes.NewJSONType(m.Nutrients),
		CreatedAt: m.CreatedAt.UTC(),
		Items:     make([]mealItemRow, 0, len(m.Items)),
	}
	for i, it := range m.Items {
		row.Items = append(row.Items, mealItemRow{
			ID:           it.ID,
			MealID:       m.ID,
			Position:     i,
			FoodID:       it.FoodID,
			FoodName:     it.FoodName,
			Grams:        it.Grams,
			PortionLabel: it.PortionLabel,
			Confidence:   it.Confidence,
			RawText:      it.RawText,
			Nutrients:    datatypes.NewJSONType(it.Nutrients),
			CreatedAt:    it.CreatedAt.UTC(),
		})
	}
	return row
}

func (r *mealRow) toDomain() domain.Meal {
	meal := domain.Meal{
		ID:        r.ID,
		UserID:    r.UserID,
		Source:    r.Source,
		Note:      r.Note,
		EatenAt:   r.EatenAt.UTC(),
		Nutrients: r.Nutrients.Data(),
		CreatedAt: r.CreatedAt.UTC(),
		Items:     make([]domain.MealItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		meal.Items = append(meal.Items, domain.MealItem{
			ID:           it.ID,
			MealID:       it.MealID,
			FoodID:       it.FoodID,
			FoodName:     it.FoodName,
			Grams:        it.Grams,
			PortionLabel: it.PortionLabel,
			Confidence:   it.Confidence,
			RawText:      it.RawText,
			Nutrients:    it.Nutrients.Data(),
			CreatedAt:    it.CreatedAt.UTC(),
		})
	}
	return meal
}
