package http

import "github.com/gin-gonic/gin"

// Register expects rg to already require authentication.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/seo-suggestions", h.Suggest)
	rg.GET("/seo-suggestions/history", h.History)
}
