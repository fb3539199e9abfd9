package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrimatch/backend/internal/domain"
)

type resolveQuery struct {
	Query    string `form:"q" binding:"required"`
	Limit    int    `form:"limit"`
	Mode     string `form:"mode"`
	Category string `form:"category"`
}

type searchBody struct {
	Query    string `json:"query" binding:"required"`
	Limit    int    `json:"limit"`
	Mode     string `json:"mode"`
	Category string `json:"category"`
}

type servingQuery struct {
	Grams float64 `form:"grams" binding:"required"`
}

type calculateQuery struct {
	Food  string   `form:"food" binding:"required"`
	Grams *float64 `form:"grams"`
}

type portionQuery struct {
	Category string `form:"category"`
	Profile  string `form:"profile"`
	Point    string `form:"point"`
}

type aggregateBody struct {
	Vectors []domain.NutrientVector `json:"vectors"`
}

type aggregateDailyBody struct {
	Entries []domain.TimedVector `json:"entries"`
}

// ResolveFood handles GET /foods/resolve
func (h *Handler) ResolveFood(c *gin.Context) {
	var q resolveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	h.resolve(c, q.Query, q.Limit, q.Mode, q.Category)
}

// SearchNutrition handles POST /nutrition/search with a JSON body
func (h *Handler) SearchNutrition(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	h.resolve(c, body.Query, body.Limit, body.Mode, body.Category)
}

func (h *Handler) resolve(c *gin.Context, query string, limit int, modeName, category string) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	mode, err := domain.ParseMatchMode(modeName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.nutrition.Resolve(c.Request.Context(), domain.ResolveRequest{
		Query:    query,
		Limit:    limit,
		Mode:     mode,
		Category: category,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetFood handles GET /foods/:id
func (h *Handler) GetFood(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	rec, err := h.nutrition.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetServing handles GET /foods/:id/serving?grams=
func (h *Handler) GetServing(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	var q servingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	serving, err := h.nutrition.ComputeServing(c.Request.Context(), c.Param("id"), q.Grams)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serving)
}

// Calculate handles GET /nutrition/calculate?food=&grams=
func (h *Handler) Calculate(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	var q calculateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	serving, err := h.nutrition.Calculate(c.Request.Context(), q.Food, q.Grams)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serving)
}

// EstimatePortion handles GET /portions/estimate
func (h *Handler) EstimatePortion(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	var q portionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.Point == "" {
		q.Point = defaultPoint
	}
	est, err := h.nutrition.EstimatePortion(q.Category, q.Profile, q.Point)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// PortionProfiles handles GET /portions/profiles
func (h *Handler) PortionProfiles(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	portions := h.nutrition.Portions()
	c.JSON(http.StatusOK, gin.H{
		"profiles":       portions.Profiles(),
		"defaultProfile": portions.DefaultProfile(),
	})
}

// Aggregate handles POST /nutrition/aggregate
func (h *Handler) Aggregate(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	var body aggregateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(body.Vectors),
		"nutrients": h.nutrition.Aggregate(body.Vectors),
	})
}

// AggregateDaily handles POST /nutrition/aggregate/daily
func (h *Handler) AggregateDaily(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	var body aggregateDailyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.nutrition.AggregateByDay(body.Entries))
}

// Categories handles GET /nutrition/categories
func (h *Handler) Categories(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	categories, err := h.nutrition.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// Stats handles GET /nutrition/stats
func (h *Handler) Stats(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	c.JSON(http.StatusOK, h.nutrition.Stats())
}

// ValidateCommonFoods handles GET /nutrition/validate
func (h *Handler) ValidateCommonFoods(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	report, err := h.nutrition.ValidateCommonFoods(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Reload handles POST /admin/reload. A failed reload keeps serving the previous store.
func (h *Handler) Reload(c *gin.Context) {
	if h.nutrition == nil {
		unavailable(c, "nutrition service")
		return
	}
	stats, err := h.nutrition.Reload(c.Request.Context())
	if err != nil {
		h.log.Warn("reload rejected", "error", err)
		h.respondError(c, err)
		return
	}
	h.log.Info("store reloaded", "generation", stats.Generation, "foods", stats.TotalFoods)
	c.JSON(http.StatusOK, stats)
}
