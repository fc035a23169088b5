package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Base types an article row can carry. Series rows share the articles table
// and are distinguished by BaseTypeSeries.
const (
	BaseTypeArticle = "article"
	BaseTypeSeries  = "series"
)

// Article types describe the editorial tier of a standalone article or episode.
const (
	ArticleTypeStandard    = "standard"
	ArticleTypeOriginal    = "original"
	ArticleTypeOriginalPro = "original_pro"
)

// Language represents a source language of the corpus.
type Language struct {
	bun.BaseModel `bun:"table:languages,alias:lg"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	Name      string    `bun:"name,notnull" json:"name"`
	LocalName *string   `bun:"local_name" json:"local_name,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Author is a reference entity keyed by its transliterated canonical name.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name"`
	LocalName *string    `bun:"local_name" json:"local_name,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Translations []*AuthorTranslation `bun:"rel:has-many,join:id=author_id" json:"translations,omitempty"`
}

// AuthorTranslation stores the per-language display name of an author.
type AuthorTranslation struct {
	bun.BaseModel `bun:"table:author_translations,alias:at"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	AuthorID   uuid.UUID `bun:"author_id,notnull,type:uuid,unique:author_translations_author_language" json:"author_id"`
	LanguageID uuid.UUID `bun:"language_id,notnull,type:uuid,unique:author_translations_author_language" json:"language_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	UpdatedBy  uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Category is a reference entity keyed by its transliterated canonical name.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name"`
	LocalName *string    `bun:"local_name" json:"local_name,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	SubCategories []*SubCategory         `bun:"rel:has-many,join:id=category_id" json:"sub_categories,omitempty"`
	Translations  []*CategoryTranslation `bun:"rel:has-many,join:id=category_id" json:"translations,omitempty"`
}

// CategoryTranslation stores the per-language display name of a category.
type CategoryTranslation struct {
	bun.BaseModel `bun:"table:category_translations,alias:ct"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CategoryID uuid.UUID `bun:"category_id,notnull,type:uuid,unique:category_translations_category_language" json:"category_id"`
	LanguageID uuid.UUID `bun:"language_id,notnull,type:uuid,unique:category_translations_category_language" json:"language_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	UpdatedBy  uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SubCategory is scoped under a parent category; its identity key is the
// (category_id, name) pair, never the name alone.
type SubCategory struct {
	bun.BaseModel `bun:"table:sub_categories,alias:sc"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	CategoryID uuid.UUID  `bun:"category_id,notnull,type:uuid,unique:sub_categories_category_name" json:"category_id"`
	Name       string     `bun:"name,notnull,unique:sub_categories_category_name" json:"name"`
	LocalName  *string    `bun:"local_name" json:"local_name,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy  *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Category     *Category                 `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Translations []*SubCategoryTranslation `bun:"rel:has-many,join:id=sub_category_id" json:"translations,omitempty"`
}

// SubCategoryTranslation stores the per-language display name of a sub-category.
type SubCategoryTranslation struct {
	bun.BaseModel `bun:"table:sub_category_translations,alias:sct"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SubCategoryID uuid.UUID `bun:"sub_category_id,notnull,type:uuid,unique:sub_category_translations_entity_language" json:"sub_category_id"`
	LanguageID    uuid.UUID `bun:"language_id,notnull,type:uuid,unique:sub_category_translations_entity_language" json:"language_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	UpdatedBy     uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Tag is a reference entity carrying a generated slug as secondary unique key.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name"`
	Slug      string     `bun:"slug,notnull,unique" json:"slug"`
	LocalName *string    `bun:"local_name" json:"local_name,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Translations []*TagTranslation `bun:"rel:has-many,join:id=tag_id" json:"translations,omitempty"`
}

// TagTranslation stores the per-language display name of a tag.
type TagTranslation struct {
	bun.BaseModel `bun:"table:tag_translations,alias:tt"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TagID      uuid.UUID `bun:"tag_id,notnull,type:uuid,unique:tag_translations_tag_language" json:"tag_id"`
	LanguageID uuid.UUID `bun:"language_id,notnull,type:uuid,unique:tag_translations_tag_language" json:"language_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	UpdatedBy  uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Editor identifies the acting identity every ingestion run is attributed to.
type Editor struct {
	bun.BaseModel `bun:"table:editors,alias:e"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Article is the persisted record for standalone articles, series covers and
// episodes. The slug is the immutable identity key across re-ingestions.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	ID            uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug"`
	SourcePath    string     `bun:"source_path" json:"source_path,omitempty"`
	Title         string     `bun:"title,notnull" json:"title"`
	LocalTitle    string     `bun:"local_title,notnull" json:"local_title"`
	Body          string     `bun:"body" json:"body,omitempty"`
	BodyHTML      string     `bun:"body_html" json:"body_html,omitempty"`
	Checksum      string     `bun:"checksum" json:"checksum,omitempty"`
	BaseType      string     `bun:"base_type,notnull,default:'article'" json:"base_type"`
	ArticleType   string     `bun:"article_type" json:"article_type,omitempty"`
	SeriesID      *uuid.UUID `bun:"series_id,type:uuid,nullzero,unique:articles_series_episode" json:"series_id,omitempty"`
	EpisodeNumber *int       `bun:"episode_number,nullzero,unique:articles_series_episode" json:"episode_number,omitempty"`
	EpisodeCount  int        `bun:"episode_count,notnull,default:0" json:"episode_count"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id"`
	CategoryID    uuid.UUID  `bun:"category_id,notnull,type:uuid" json:"category_id"`
	SubCategoryID *uuid.UUID `bun:"sub_category_id,type:uuid,nullzero" json:"sub_category_id,omitempty"`
	LanguageID    uuid.UUID  `bun:"language_id,notnull,type:uuid" json:"language_id"`
	EditorID      uuid.UUID  `bun:"editor_id,notnull,type:uuid" json:"editor_id"`
	Completed     bool       `bun:"completed,notnull,default:false" json:"completed"`
	Published     bool       `bun:"published,notnull,default:false" json:"published"`
	Featured      bool       `bun:"featured,notnull,default:false" json:"featured"`
	DeletedAt     *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	DeletedBy     *uuid.UUID `bun:"deleted_by,type:uuid" json:"deleted_by,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Author      *Author      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Category    *Category    `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	SubCategory *SubCategory `bun:"rel:belongs-to,join:sub_category_id=id" json:"sub_category,omitempty"`
	Language    *Language    `bun:"rel:belongs-to,join:language_id=id" json:"language,omitempty"`
	Series      *Article     `bun:"rel:belongs-to,join:series_id=id" json:"series,omitempty"`
	Episodes    []*Article   `bun:"rel:has-many,join:id=series_id" json:"episodes,omitempty"`
	Tags        []*Tag       `bun:"m2m:article_tags,join:Article=Tag" json:"tags,omitempty"`
}

// ArticleTag joins articles to their resolved tags.
type ArticleTag struct {
	bun.BaseModel `bun:"table:article_tags,alias:art"`

	ArticleID uuid.UUID `bun:"article_id,pk,type:uuid" json:"article_id"`
	TagID     uuid.UUID `bun:"tag_id,pk,type:uuid" json:"tag_id"`

	Article *Article `bun:"rel:belongs-to,join:article_id=id" json:"article,omitempty"`
	Tag     *Tag     `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}

// IsSeries reports whether the row is a series cover.
func (a *Article) IsSeries() bool {
	return a != nil && a.BaseType == BaseTypeSeries
}

// IsEpisode reports whether the row belongs to a series.
func (a *Article) IsEpisode() bool {
	return a != nil && a.SeriesID != nil
}

// IsDeleted reports whether the row carries a soft-delete marker.
func (a *Article) IsDeleted() bool {
	return a != nil && a.DeletedAt != nil
}
