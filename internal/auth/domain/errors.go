package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidAvatarURL   = errors.New("avatar_url must be an http or https URL")
	ErrDisplayNameTooLong = errors.New("display_name must be at most 150 characters")
)
