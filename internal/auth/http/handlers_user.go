package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	"github.com/blogcraftai/blogcraft-backend/internal/auth/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

func toProfile(u *domain.User) profileResponse {
	return profileResponse{
		FirebaseUID:     u.FirebaseUID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		SafeDisplayName: u.SafeDisplayName(),
		Bio:             u.Bio,
		AvatarURL:       u.AvatarURL,
		Role:            u.Role,
	}
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	firebaseUID := auth.UserFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.authService.GetUserByFirebaseUID(c.Request.Context(), firebaseUID)
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("get_profile", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toProfile(user)})
}

// SyncUser registers the caller on first sign-in and refreshes identity data
// afterwards. The body is optional.
func (h *Handler) SyncUser(c *gin.Context) {
	firebaseUID := auth.UserFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body struct {
		DisplayName *string `json:"display_name,omitempty"`
		AvatarURL   *string `json:"avatar_url,omitempty"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}

	user, err := h.authService.SyncUser(c.Request.Context(), &domain.SyncUserRequest{
		FirebaseUID: firebaseUID,
		Email:       auth.UserEmail(c),
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("sync_user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toProfile(user)})
}

// UpdateProfile updates the user's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	firebaseUID := auth.UserFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		DisplayName *string `json:"display_name,omitempty"`
		Bio         *string `json:"bio,omitempty"`
		AvatarURL   *string `json:"avatar_url,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), firebaseUID, &domain.UpdateProfileRequest{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"user": toProfile(user)})
	case errors.Is(err, domain.ErrInvalidAvatarURL), errors.Is(err, domain.ErrDisplayNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		logging.NewLogger(c.Request.Context()).LogError("update_profile", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
	}
}
