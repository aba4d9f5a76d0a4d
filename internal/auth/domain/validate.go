package domain

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const MaxDisplayNameLen = 150

// Validate checks the fields that are being changed.
func (r *UpdateProfileRequest) Validate() error {
	if r.DisplayName != nil && utf8.RuneCountInString(strings.TrimSpace(*r.DisplayName)) > MaxDisplayNameLen {
		return ErrDisplayNameTooLong
	}
	if r.AvatarURL != nil {
		if err := ValidateAvatarURL(*r.AvatarURL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAvatarURL accepts an empty value (clears the avatar) or an absolute
// http(s) URL with a host.
func ValidateAvatarURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidAvatarURL
	}
	return nil
}
