package http

import "github.com/blogcraftai/blogcraft-backend/internal/auth/service"

type Handler struct {
	authService *service.AuthService
}

func New(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

type profileResponse struct {
	FirebaseUID     string `json:"firebase_uid"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	SafeDisplayName string `json:"safe_display_name"`
	Bio             string `json:"bio"`
	AvatarURL       string `json:"avatar_url"`
	Role            string `json:"role"`
}
