package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrimatch/backend/internal/domain"
)

type parseBody struct {
	RawResponse string `json:"rawResponse" binding:"required"`
}

// Suggest handles POST /vision/suggest
func (h *Handler) Suggest(c *gin.Context) {
	if h.suggestions == nil {
		unavailable(c, "suggestion service")
		return
	}
	var req domain.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.suggestions.Suggest(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ParseVision handles POST /vision/parse
func (h *Handler) ParseVision(c *gin.Context) {
	if h.suggestions == nil {
		unavailable(c, "suggestion service")
		return
	}
	var body parseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.suggestions.Parse(c.Request.Context(), body.RawResponse)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
