package content

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// ArticleSlug derives the collision-resistant identity slug for an article or
// series cover from its transliterated title and canonical author name.
func ArticleSlug(title, authorName string) (string, error) {
	value, err := slug.Normalize(strings.TrimSpace(title) + " " + strings.TrimSpace(authorName))
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrSlugInvalid
	}
	return value, nil
}

// TagSlug derives the lowercase hyphenated secondary key for a tag.
func TagSlug(name string) (string, error) {
	value, err := slug.Normalize(name)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrSlugInvalid
	}
	return value, nil
}

// NameKey case-normalizes a canonical name for identity comparisons.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
