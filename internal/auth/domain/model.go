package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"
)

// User represents a user in the application
// Firebase UID is the primary identifier
type User struct {
	FirebaseUID string     `json:"firebase_uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Bio         string     `json:"bio" db:"bio"`
	AvatarURL   string     `json:"avatar_url" db:"avatar_url"`
	Role        string     `json:"role" db:"role"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// SafeDisplayName always has a value: the display name or the local part of
// the email address.
func (u *User) SafeDisplayName() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// SyncUserRequest carries identity data taken from a verified token.
type SyncUserRequest struct {
	FirebaseUID string
	Email       string
	DisplayName *string
	AvatarURL   *string
}

// UpdateProfileRequest holds the editable profile fields. Nil means unchanged.
type UpdateProfileRequest struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}
