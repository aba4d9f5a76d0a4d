package http

import "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"

// Handler serves the SEO suggestion endpoints
type Handler struct {
	suggestions *service.SuggestionService
}

func New(suggestions *service.SuggestionService) *Handler {
	return &Handler{suggestions: suggestions}
}

type suggestRequest struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}
