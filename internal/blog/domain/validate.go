package domain

import (
	"strings"
	"unicode/utf8"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func ValidReaction(r string) bool {
	return r == ReactionLike || r == ReactionDislike
}

// ValidatePostFields checks the user-supplied text of a post.
func ValidatePostFields(title, summary, content, status string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return NewValidationError("title", "this field may not be blank")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		return NewValidationError("title", "ensure this field has no more than 200 characters")
	case Slugify(title) == "":
		return NewValidationError("title", "must contain at least one letter or digit")
	case strings.TrimSpace(summary) == "":
		return NewValidationError("summary", "this field may not be blank")
	case strings.TrimSpace(content) == "":
		return NewValidationError("content", "this field may not be blank")
	case !ValidStatus(status):
		return NewValidationError("status", "must be one of draft, published, archived")
	}
	return nil
}

// NormalizeTagNames trims names, drops empties and duplicates, and keeps the
// first-seen order.
func NormalizeTagNames(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		if err := ValidateTagName(n); err != nil {
			return nil, err
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

func ValidateTagName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("name", "this field may not be blank")
	}
	if utf8.RuneCountInString(name) > MaxTagNameLen {
		return NewValidationError("name", "ensure this field has no more than 60 characters")
	}
	if Slugify(name) == "" {
		return NewValidationError("name", "must contain at least one letter or digit")
	}
	return nil
}
