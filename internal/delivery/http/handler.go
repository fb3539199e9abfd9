package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
	"github.com/nutrimatch/backend/internal/usecase"
)

const (
	serviceName    = "nutrimatch-backend"
	serviceVersion = "1.0.0"

	// userIDHeader identifies the caller for meal endpoints
	userIDHeader  = "X-User-ID"
	userIDKey     = "userID"
	defaultDays   = 7
	defaultPoint  = usecase.PointMid
	errorFieldKey = "error"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	nutrition   *usecase.NutritionService
	meals       *usecase.MealService
	suggestions *usecase.SuggestionService
	log         *logger.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes its endpoints
// answer 503.
func NewHandler(
	nutrition *usecase.NutritionService,
	meals *usecase.MealService,
	suggestions *usecase.SuggestionService,
	log *logger.Logger,
) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		nutrition:   nutrition,
		meals:       meals,
		suggestions: suggestions,
		log:         log.With("component", "http"),
	}
}

// HealthCheck returns the health status of the API and the served store generation
func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	}
	if h.nutrition != nil {
		stats := h.nutrition.Stats()
		body["generation"] = stats.Generation
		body["foods"] = stats.TotalFoods
		if stats.TotalFoods == 0 {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrFoodNotFound), errors.Is(err, domain.ErrMealNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDatasetInvalid):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreNotReady):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{errorFieldKey: "internal server error"})
		return
	}
	c.JSON(status, gin.H{errorFieldKey: err.Error()})
}

// badRequest reports a binding failure
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{errorFieldKey: err.Error()})
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{errorFieldKey: what + " not configured"})
}

// RequireUser rejects requests without the X-User-ID header and stores the id on the context
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{errorFieldKey: userIDHeader + " header is required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}
