package http

import "github.com/gin-gonic/gin"

// Register expects rg to already require authentication.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.POST("/sync", h.SyncUser)
	rg.PATCH("/profile", h.UpdateProfile)
	rg.PUT("/profile", h.UpdateProfile)
}
