package domain

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrForbidden        = errors.New("you do not have permission to perform this action")
	ErrTagExists        = errors.New("tag with this name already exists")
	ErrSlugUnavailable  = errors.New("could not generate a unique slug")
)

// ValidationError reports a rejected field. Handlers answer it with 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
