package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField            = errors.New("content: required front-matter field missing")
	ErrFormat                  = errors.New("content: front-matter field has invalid format")
	ErrSeriesRule              = errors.New("content: series exclusivity rule violated")
	ErrTransliterationBatch    = errors.New("content: transliteration batch failed")
	ErrDanglingSeriesReference = errors.New("content: episode references unknown series")
	ErrSlugInvalid             = errors.New("content: slug contains invalid characters")
	ErrNotFound                = errors.New("content: record not found")
)

// MissingFieldError reports every absent required front-matter field of a
// single document, not just the first one encountered.
type MissingFieldError struct {
	Path   string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrMissingField.Error()
	}
	return fmt.Sprintf("%s: %s (%s)", ErrMissingField.Error(), strings.Join(e.Fields, ", "), e.Path)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// FormatError reports a single front-matter field whose value failed type or
// shape validation.
type FormatError struct {
	Path   string
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	if e == nil {
		return ErrFormat.Error()
	}
	return fmt.Sprintf("%s: %s: %s (%s)", ErrFormat.Error(), e.Field, e.Reason, e.Path)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// SeriesRuleError lists every series exclusivity rule a document violates.
type SeriesRuleError struct {
	Path       string
	Violations []string
}

func (e *SeriesRuleError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return ErrSeriesRule.Error()
	}
	return fmt.Sprintf("%s: %s (%s)", ErrSeriesRule.Error(), strings.Join(e.Violations, "; "), e.Path)
}

func (e *SeriesRuleError) Unwrap() error {
	return ErrSeriesRule
}

// TransliterationBatchError aborts an entire ingestion batch: slug generation
// has no safe fallback for a missing transliteration.
type TransliterationBatchError struct {
	Requested int
	Returned  int
	Reason    string
}

func (e *TransliterationBatchError) Error() string {
	if e == nil {
		return ErrTransliterationBatch.Error()
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", ErrTransliterationBatch.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: requested %d results, got %d", ErrTransliterationBatch.Error(), e.Requested, e.Returned)
}

func (e *TransliterationBatchError) Unwrap() error {
	return ErrTransliterationBatch
}

// DanglingSeriesReferenceError rejects an episode whose series title matches
// no ingested series cover.
type DanglingSeriesReferenceError struct {
	Path        string
	SeriesTitle string
}

func (e *DanglingSeriesReferenceError) Error() string {
	if e == nil {
		return ErrDanglingSeriesReference.Error()
	}
	return fmt.Sprintf("%s: %q (%s)", ErrDanglingSeriesReference.Error(), e.SeriesTitle, e.Path)
}

func (e *DanglingSeriesReferenceError) Unwrap() error {
	return ErrDanglingSeriesReference
}

// NotFoundError captures repository lookups that matched no row.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s: %s %q", ErrNotFound.Error(), e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IntegrityWarning reports a persisted-state anomaly found by the auditor or
// the upsert engine. Warnings never block ingestion.
type IntegrityWarning struct {
	Kind     string
	Resource string
	Key      string
	Message  string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s: %s %q: %s", w.Kind, w.Resource, w.Key, w.Message)
}

// Warning kinds emitted by the integrity auditor.
const (
	WarnEpisodeCountDrift = "episode_count_drift"
	WarnOrphanedReference = "orphaned_reference"
	WarnDuplicateSlug     = "duplicate_slug"
	WarnEpisodeNumbering  = "episode_numbering"
)
