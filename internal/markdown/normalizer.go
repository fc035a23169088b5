package markdown

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/logging"
)

// ContentType classifies a normalized document.
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypeSeries  ContentType = "series"
	ContentTypeEpisode ContentType = "episode"
)

// NormalizedFrontmatter is the canonical field set after alias resolution.
// Exactly one of series-cover, episode or standalone article holds for any
// valid document.
type NormalizedFrontmatter struct {
	Title       string
	LocalTitle  string
	Author      string
	Category    string
	SubCategory string
	Lang        string
	Tags        []string
	BaseType    string
	SeriesTitle string
	// Episode is a display hint from the author, never the authoritative
	// number; the upsert engine recomputes counts from persisted rows.
	Episode     int
	ArticleType string
	Completed   bool
	Published   bool
	Featured    bool
}

// Logical field names. Aliases are resolved in priority order: the first
// present key wins and conflicting lower-priority values are logged, not fatal.
const (
	FieldTitle       = "title"
	FieldLocalTitle  = "local_title"
	FieldAuthor      = "author"
	FieldCategory    = "category"
	FieldSubCategory = "sub_category"
	FieldLang        = "lang"
	FieldTags        = "tags"
	FieldBaseType    = "base_type"
	FieldSeriesTitle = "series_title"
	FieldEpisode     = "episode"
	FieldArticleType = "article_type"
	FieldCompleted   = "completed"
	FieldPublished   = "published"
	FieldFeatured    = "featured"
)

var fieldAliases = map[string][]string{
	FieldTitle:       {"title"},
	FieldLocalTitle:  {"local_title", "localTitle"},
	FieldAuthor:      {"author"},
	FieldCategory:    {"category"},
	FieldSubCategory: {"sub_category", "subCategory"},
	FieldLang:        {"lang", "language"},
	FieldTags:        {"tags"},
	FieldBaseType:    {"base_type", "baseType"},
	FieldSeriesTitle: {"series_title", "seriesTitle"},
	FieldEpisode:     {"episode"},
	FieldArticleType: {"article_type", "articleType"},
	FieldCompleted:   {"completed"},
	FieldPublished:   {"published"},
	FieldFeatured:    {"featured"},
}

var requiredFields = []string{FieldTitle, FieldLocalTitle, FieldAuthor, FieldCategory, FieldLang}

// Normalizer resolves aliases, validates front-matter and classifies the
// content type of a document. A validation failure rejects the single
// document without aborting its siblings.
type Normalizer struct {
	logger logging.Logger
}

// NewNormalizer builds a Normalizer. A nil logger is replaced with a no-op.
func NewNormalizer(logger logging.Logger) *Normalizer {
	return &Normalizer{logger: logging.OrNoOp(logger)}
}

// Normalize validates doc's raw front-matter and returns the canonical field
// set plus the content type.
func (n *Normalizer) Normalize(doc *Document) (*NormalizedFrontmatter, ContentType, error) {
	raw := doc.Raw
	path := doc.FilePath

	fm := &NormalizedFrontmatter{
		BaseType:    content.BaseTypeArticle,
		ArticleType: content.ArticleTypeStandard,
	}

	var missing []string
	for _, field := range requiredFields {
		value, ok := n.resolveScalar(raw, field, path)
		if !ok || value == "" {
			missing = append(missing, field)
			continue
		}
		switch field {
		case FieldTitle:
			fm.Title = value
		case FieldLocalTitle:
			fm.LocalTitle = value
		case FieldAuthor:
			fm.Author = value
		case FieldCategory:
			fm.Category = value
		case FieldLang:
			fm.Lang = strings.ToLower(value)
		}
	}
	if len(missing) > 0 {
		return nil, "", &content.MissingFieldError{Path: path, Fields: missing}
	}

	if err := n.applyOptional(raw, fm, path); err != nil {
		return nil, "", err
	}

	hasSeriesTitle := n.present(raw, FieldSeriesTitle)
	hasEpisode := n.present(raw, FieldEpisode)
	hasArticleType := n.present(raw, FieldArticleType)
	hasCompleted := n.present(raw, FieldCompleted)

	var violations []string
	if fm.BaseType == content.BaseTypeSeries {
		if hasSeriesTitle {
			violations = append(violations, "series cover must not carry series_title")
		}
		if hasEpisode {
			violations = append(violations, "series cover must not carry episode")
		}
		if hasArticleType {
			violations = append(violations, "series cover must not carry article_type")
		}
	} else if hasSeriesTitle {
		if hasCompleted {
			violations = append(violations, "episode must not carry completed")
		}
	}
	if len(violations) > 0 {
		return nil, "", &content.SeriesRuleError{Path: path, Violations: violations}
	}

	switch {
	case fm.BaseType == content.BaseTypeSeries:
		return fm, ContentTypeSeries, nil
	case fm.SeriesTitle != "":
		return fm, ContentTypeEpisode, nil
	default:
		return fm, ContentTypeArticle, nil
	}
}

func (n *Normalizer) applyOptional(raw map[string]any, fm *NormalizedFrontmatter, path string) error {
	if value, ok := n.resolve(raw, FieldSubCategory, path); ok {
		text, ok := coerceString(value)
		if !ok || text == "" {
			return &content.FormatError{Path: path, Field: FieldSubCategory, Reason: "must be a non-empty string"}
		}
		fm.SubCategory = text
	}

	if value, ok := n.resolve(raw, FieldSeriesTitle, path); ok {
		text, ok := coerceString(value)
		if !ok || text == "" {
			return &content.FormatError{Path: path, Field: FieldSeriesTitle, Reason: "must be a non-empty string"}
		}
		fm.SeriesTitle = text
	}

	if value, ok := n.resolve(raw, FieldTags, path); ok {
		tags, err := coerceTags(value)
		if err != nil {
			return &content.FormatError{Path: path, Field: FieldTags, Reason: err.Error()}
		}
		fm.Tags = tags
	}

	if value, ok := n.resolve(raw, FieldBaseType, path); ok {
		text, _ := coerceString(value)
		if err := validation.Validate(text, validation.In(content.BaseTypeArticle, content.BaseTypeSeries)); err != nil {
			return &content.FormatError{Path: path, Field: FieldBaseType, Reason: fmt.Sprintf("%q is not a valid base type", text)}
		}
		fm.BaseType = text
	}

	if value, ok := n.resolve(raw, FieldArticleType, path); ok {
		text, _ := coerceString(value)
		err := validation.Validate(text, validation.In(
			content.ArticleTypeStandard,
			content.ArticleTypeOriginal,
			content.ArticleTypeOriginalPro,
		))
		if err != nil {
			return &content.FormatError{Path: path, Field: FieldArticleType, Reason: fmt.Sprintf("%q is not a valid article type", text)}
		}
		fm.ArticleType = text
	}

	if value, ok := n.resolve(raw, FieldEpisode, path); ok {
		episode, err := coerceInt(value)
		if err != nil {
			return &content.FormatError{Path: path, Field: FieldEpisode, Reason: err.Error()}
		}
		if err := validation.Validate(episode, validation.Min(1)); err != nil {
			return &content.FormatError{Path: path, Field: FieldEpisode, Reason: "must be a positive integer"}
		}
		fm.Episode = episode
	}

	bools := []struct {
		field  string
		target *bool
	}{
		{FieldCompleted, &fm.Completed},
		{FieldPublished, &fm.Published},
		{FieldFeatured, &fm.Featured},
	}
	for _, b := range bools {
		value, ok := n.resolve(raw, b.field, path)
		if !ok {
			continue
		}
		flag, ok := value.(bool)
		if !ok {
			return &content.FormatError{Path: path, Field: b.field, Reason: "must be a boolean"}
		}
		*b.target = flag
	}

	return nil
}

// resolve walks the field's alias list in priority order. When two aliases
// are present and disagree, the higher-priority one wins and the conflict is
// logged.
func (n *Normalizer) resolve(raw map[string]any, field, path string) (any, bool) {
	var (
		value  any
		winner string
		found  bool
	)
	for _, key := range fieldAliases[field] {
		candidate, ok := raw[key]
		if !ok {
			continue
		}
		if !found {
			value, winner, found = candidate, key, true
			continue
		}
		if fmt.Sprint(candidate) != fmt.Sprint(value) {
			n.logger.Warn("front-matter alias conflict",
				"field", field, "kept", winner, "ignored", key, "path", path)
		}
	}
	return value, found
}

func (n *Normalizer) resolveScalar(raw map[string]any, field, path string) (string, bool) {
	value, ok := n.resolve(raw, field, path)
	if !ok {
		return "", false
	}
	text, ok := coerceString(value)
	if !ok {
		return "", false
	}
	return text, true
}

func (n *Normalizer) present(raw map[string]any, field string) bool {
	for _, key := range fieldAliases[field] {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}

func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case int, int64, uint64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%v is not an integer", value)
	}
}

func coerceTags(value any) ([]string, error) {
	switch v := value.(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			text, ok := coerceString(item)
			if !ok || text == "" {
				return nil, fmt.Errorf("tag entries must be non-empty strings")
			}
			tags = append(tags, text)
		}
		return tags, nil
	case []string:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			item = strings.TrimSpace(item)
			if item == "" {
				return nil, fmt.Errorf("tag entries must be non-empty strings")
			}
			tags = append(tags, item)
		}
		return tags, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("tag entries must be non-empty strings")
		}
		return []string{strings.TrimSpace(v)}, nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}
