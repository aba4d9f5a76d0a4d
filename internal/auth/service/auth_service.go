package service

import (
	"context"
	"errors"
	"strings"

	"github.com/blogcraftai/blogcraft-backend/internal/auth/domain"
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error)
	Upsert(ctx context.Context, req *domain.SyncUserRequest) (*domain.User, error)
	UpdateProfile(ctx context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.User, error)
	GetRole(ctx context.Context, uid string) (string, error)
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (s *AuthService) GetUserByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return s.users.GetByFirebaseUID(ctx, uid)
}

// SyncUser creates or refreshes a user from verified token data and records
// the login.
func (s *AuthService) SyncUser(ctx context.Context, req *domain.SyncUserRequest) (*domain.User, error) {
	if strings.TrimSpace(req.FirebaseUID) == "" {
		return nil, errors.New("firebase uid required")
	}
	if req.Email == "" {
		// Phone and anonymous sign-ins carry no email; keep the column unique.
		req.Email = req.FirebaseUID + "@firebase.local"
	}
	if req.AvatarURL != nil {
		if err := domain.ValidateAvatarURL(*req.AvatarURL); err != nil {
			req.AvatarURL = nil
		}
	}
	return s.users.Upsert(ctx, req)
}

// UpdateProfile validates and applies profile edits.
func (s *AuthService) UpdateProfile(ctx context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	req.DisplayName = trim(req.DisplayName)
	req.AvatarURL = trim(req.AvatarURL)
	return s.users.UpdateProfile(ctx, uid, req)
}

// RoleOf reports the caller's role. Users that have not synced yet are
// ordinary users.
func (s *AuthService) RoleOf(ctx context.Context, uid string) (string, error) {
	role, err := s.users.GetRole(ctx, uid)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
