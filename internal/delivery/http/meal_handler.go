package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrimatch/backend/internal/domain"
)

type listMealsQuery struct {
	Limit int `form:"limit"`
}

type summaryQuery struct {
	Days int `form:"days"`
}

// CreateMeal handles POST /meals
func (h *Handler) CreateMeal(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	var req domain.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.UserID = c.GetString(userIDKey)

	meal, err := h.meals.CreateMeal(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// ListMeals handles GET /meals?limit=
func (h *Handler) ListMeals(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	var q listMealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	meals, err := h.meals.ListMeals(c.Request.Context(), c.GetString(userIDKey), q.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals, "count": len(meals)})
}

// GetMeal handles GET /meals/:id
func (h *Handler) GetMeal(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	meal, err := h.meals.GetMeal(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// DeleteMeal handles DELETE /meals/:id
func (h *Handler) DeleteMeal(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	if err := h.meals.DeleteMeal(c.Request.Context(), c.GetString(userIDKey), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MealSummary handles GET /meals/summary?days=
func (h *Handler) MealSummary(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	var q summaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.Days == 0 {
		q.Days = defaultDays
	}
	summary, err := h.meals.Summary(c.Request.Context(), c.GetString(userIDKey), q.Days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TodaySummary handles GET /meals/summary/today
func (h *Handler) TodaySummary(c *gin.Context) {
	if h.meals == nil {
		unavailable(c, "meal service")
		return
	}
	summary, err := h.meals.Today(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
