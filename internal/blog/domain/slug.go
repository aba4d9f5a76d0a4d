package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	dashRuns     = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases s, folds accents to ASCII, drops everything but letters,
// digits, underscores and hyphens, and joins words with single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range folded {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	out := nonSlugChars.ReplaceAllString(strings.ToLower(b.String()), "")
	out = dashRuns.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}

// TruncateSlug cuts slug to at most max bytes without leaving a trailing hyphen.
func TruncateSlug(slug string, max int) string {
	if len(slug) <= max {
		return slug
	}
	return strings.TrimRight(slug[:max], "-_")
}

// SlugWithSuffix appends suffix while keeping the result within max bytes.
func SlugWithSuffix(base, suffix string, max int) string {
	return TruncateSlug(base, max-len(suffix)-1) + "-" + suffix
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffix returns n random lowercase alphanumerics for de-duplicating slugs.
func RandomSuffix(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b), nil
}
