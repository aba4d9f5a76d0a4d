package domain

import (
	"strings"
	"time"
)

// Suggestion is one normalized SEO recommendation returned by the provider.
// Values are built once from a validated payload and never mutated.
type Suggestion struct {
	Heading     string   `json:"heading"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Risks       []string `json:"risks"`
}

// SuggestionInput is the post text a suggestion is generated for.
type SuggestionInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// Normalize trims every field and rejects the input when any is left empty.
func (in SuggestionInput) Normalize() (SuggestionInput, error) {
	out := SuggestionInput{
		Title:   strings.TrimSpace(in.Title),
		Summary: strings.TrimSpace(in.Summary),
		Content: strings.TrimSpace(in.Content),
	}
	if out.Title == "" || out.Summary == "" || out.Content == "" {
		return SuggestionInput{}, NewClientInputError("title, summary, and content are required for suggestions")
	}
	return out, nil
}

// Run outcome constants
const (
	OutcomeOK            = "ok"
	OutcomeClientError   = "client_error"
	OutcomeProviderError = "provider_error"
)

// SuggestionRun is the audit record of one generation request.
type SuggestionRun struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	PostSlug    string       `json:"post_slug,omitempty"`
	InputHash   string       `json:"input_hash"`
	Outcome     string       `json:"outcome"`
	Error       string       `json:"error,omitempty"`
	Cached      bool         `json:"cached"`
	Suggestions []Suggestion `json:"suggestions"`
	CreatedAt   time.Time    `json:"created_at"`
}
