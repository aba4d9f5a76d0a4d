package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
)

// StatusFor maps a suggestion error to its HTTP status: 422 for bad input,
// 503 for anything the provider caused.
func StatusFor(err error) int {
	if errors.Is(err, domain.ErrClientInput) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusServiceUnavailable
}

// Suggest generates suggestions for an ad-hoc draft
func (h *Handler) Suggest(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body suggestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), service.Request{
		UserID: userID,
		Input: domain.SuggestionInput{
			Title:   body.Title,
			Summary: body.Summary,
			Content: body.Content,
		},
	})
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// History lists the caller's recent suggestion runs
func (h *Handler) History(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	runs, err := h.suggestions.History(c.Request.Context(), userID, limit)
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("seo_history_list", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestion history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
