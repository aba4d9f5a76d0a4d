package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrClientInput matches every *ClientInputError via errors.Is.
	ErrClientInput = errors.New("invalid suggestion input")
	// ErrProvider matches every *ProviderError via errors.Is.
	ErrProvider = errors.New("suggestion provider unavailable")
)

// ClientInputError means the caller supplied unusable data. Callers answer it
// with a 4xx response.
type ClientInputError struct {
	Message string
}

func (e *ClientInputError) Error() string { return e.Message }

func (e *ClientInputError) Is(target error) bool { return target == ErrClientInput }

// ProviderError means the remote call or its reply failed. Callers answer it
// with 503. StatusCode is set only for non-2xx replies. The transport cause is
// logged where it happens and is not wrapped.
type ProviderError struct {
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func NewClientInputError(format string, args ...any) *ClientInputError {
	return &ClientInputError{Message: fmt.Sprintf(format, args...)}
}

func NewProviderError(format string, args ...any) *ProviderError {
	return &ProviderError{Message: fmt.Sprintf(format, args...)}
}
