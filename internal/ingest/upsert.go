package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/identity"
	"github.com/kunaile/janbhas/internal/logging"
	"github.com/kunaile/janbhas/internal/markdown"
)

// ProcessedMetadata is one document after normalization, transliteration and
// reference resolution: everything the upsert engine needs to persist a row.
type ProcessedMetadata struct {
	Slug        string
	SourcePath  string
	Title       string
	LocalTitle  string
	Body        string
	BodyHTML    string
	Checksum    string
	ContentType markdown.ContentType
	ArticleType string
	SeriesTitle string
	Episode     int

	AuthorID      uuid.UUID
	CategoryID    uuid.UUID
	SubCategoryID *uuid.UUID
	LanguageID    uuid.UUID
	TagIDs        []uuid.UUID

	Completed bool
	Published bool
	Featured  bool
}

// Outcome reports what an upsert did with a document.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

// Upserter persists article and series rows keyed by slug. Re-ingesting the
// same logical document updates in place and clears any soft-delete marker;
// it never duplicates.
type Upserter struct {
	db       *bun.DB
	articles repository.Repository[*content.Article]
	logger   logging.Logger
}

// NewUpserter builds an upsert engine over the supplied database.
func NewUpserter(db *bun.DB, logger logging.Logger) *Upserter {
	return &Upserter{
		db:       db,
		articles: content.NewArticleRepository(db),
		logger:   logging.OrNoOp(logger),
	}
}

// UpsertArticle persists one processed document, attributed to editorID.
// Episodes resolve their series linkage here; callers must upsert every
// series cover of the batch before any of its episodes (two-pass ordering).
func (u *Upserter) UpsertArticle(ctx context.Context, meta *ProcessedMetadata, editorID uuid.UUID) (Outcome, uuid.UUID, error) {
	// Slug is the repository identifier; deleted rows are visible here so an
	// edit can resurrect them.
	existing, err := u.articles.GetByIdentifier(ctx, meta.Slug)
	if err != nil {
		if !isNotFound(err) {
			return OutcomeSkipped, uuid.Nil, fmt.Errorf("upsert lookup %s: %w", meta.Slug, err)
		}
		existing = nil
	}

	var seriesID *uuid.UUID
	var episodeNumber *int
	if meta.ContentType == markdown.ContentTypeEpisode {
		sid, err := u.resolveSeries(ctx, meta)
		if err != nil {
			return OutcomeSkipped, uuid.Nil, err
		}
		number, err := u.assignEpisodeNumber(ctx, sid, meta)
		if err != nil {
			return OutcomeSkipped, uuid.Nil, err
		}
		seriesID, episodeNumber = &sid, &number
	}

	if existing != nil && !existing.IsDeleted() && existing.Checksum == meta.Checksum &&
		sameSeriesLink(existing, seriesID, episodeNumber) {
		u.logger.Debug("unchanged document skipped", "slug", meta.Slug)
		return OutcomeSkipped, existing.ID, nil
	}

	now := time.Now().UTC()
	record := &content.Article{
		ID:            identity.ArticleUUID(meta.Slug),
		Slug:          meta.Slug,
		SourcePath:    meta.SourcePath,
		Title:         meta.Title,
		LocalTitle:    meta.LocalTitle,
		Body:          meta.Body,
		BodyHTML:      meta.BodyHTML,
		Checksum:      meta.Checksum,
		BaseType:      baseTypeFor(meta.ContentType),
		ArticleType:   articleTypeFor(meta),
		SeriesID:      seriesID,
		EpisodeNumber: episodeNumber,
		AuthorID:      meta.AuthorID,
		CategoryID:    meta.CategoryID,
		SubCategoryID: meta.SubCategoryID,
		LanguageID:    meta.LanguageID,
		EditorID:      editorID,
		Completed:     meta.Completed,
		Published:     meta.Published,
		Featured:      meta.Featured,
		UpdatedAt:     now,
	}

	outcome := OutcomeCreated
	if existing == nil {
		record.CreatedAt = now
		if _, err := u.db.NewInsert().Model(record).Exec(ctx); err != nil {
			return OutcomeSkipped, uuid.Nil, fmt.Errorf("upsert insert %s: %w", meta.Slug, err)
		}
	} else {
		// An edit resurrects a previously removed document: the update
		// clears deleted_at/deleted_by along with the mutable fields.
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.EpisodeCount = existing.EpisodeCount
		record.DeletedAt = nil
		record.DeletedBy = nil
		_, err := u.db.NewUpdate().Model(record).
			Column("slug", "source_path", "title", "local_title", "body", "body_html",
				"checksum", "base_type", "article_type", "series_id", "episode_number",
				"author_id", "category_id", "sub_category_id", "language_id", "editor_id",
				"completed", "published", "featured", "deleted_at", "deleted_by", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return OutcomeSkipped, uuid.Nil, fmt.Errorf("upsert update %s: %w", meta.Slug, err)
		}
		outcome = OutcomeUpdated
	}

	if err := u.replaceTags(ctx, record.ID, meta.TagIDs); err != nil {
		return OutcomeSkipped, uuid.Nil, err
	}

	if seriesID != nil {
		if _, err := u.RecountSeries(ctx, *seriesID); err != nil {
			return OutcomeSkipped, uuid.Nil, err
		}
	}

	return outcome, record.ID, nil
}

// SoftDeleteByPath marks the row ingested from path as removed, recording the
// acting editor. The slug stays reserved. Returns false when no active row
// matches.
func (u *Upserter) SoftDeleteByPath(ctx context.Context, path string, editorID uuid.UUID) (bool, error) {
	record := new(content.Article)
	err := u.db.NewSelect().Model(record).
		Where("source_path = ?", path).
		Where("deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("soft delete lookup %s: %w", path, err)
	}

	now := time.Now().UTC()
	_, err = u.db.NewUpdate().Model((*content.Article)(nil)).
		Where("id = ?", record.ID).
		Set("deleted_at = ?", now).
		Set("deleted_by = ?", editorID).
		Set("updated_at = ?", now).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("soft delete %s: %w", record.Slug, err)
	}

	if record.SeriesID != nil {
		if _, err := u.RecountSeries(ctx, *record.SeriesID); err != nil {
			return false, err
		}
	}

	u.logger.Info("soft deleted document", "slug", record.Slug, "path", path)
	return true, nil
}

// RecountSeries recomputes the authoritative episode count of a series from
// its non-deleted episode rows, ignoring any declared front-matter hints.
func (u *Upserter) RecountSeries(ctx context.Context, seriesID uuid.UUID) (int, error) {
	count, err := u.db.NewSelect().Model((*content.Article)(nil)).
		Where("series_id = ?", seriesID).
		Where("deleted_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("recount series %s: %w", seriesID, err)
	}

	_, err = u.db.NewUpdate().Model((*content.Article)(nil)).
		Where("id = ?", seriesID).
		Set("episode_count = ?", count).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("recount series %s: %w", seriesID, err)
	}
	return count, nil
}

// resolveSeries matches an episode's series_title against a series cover,
// case-insensitively, among non-deleted series rows.
func (u *Upserter) resolveSeries(ctx context.Context, meta *ProcessedMetadata) (uuid.UUID, error) {
	series := new(content.Article)
	err := u.db.NewSelect().Model(series).
		Where("base_type = ?", content.BaseTypeSeries).
		Where("lower(title) = ?", content.NameKey(meta.SeriesTitle)).
		Where("deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, &content.DanglingSeriesReferenceError{
				Path:        meta.SourcePath,
				SeriesTitle: meta.SeriesTitle,
			}
		}
		return uuid.Nil, fmt.Errorf("resolve series %q: %w", meta.SeriesTitle, err)
	}
	return series.ID, nil
}

// assignEpisodeNumber honors the declared display hint when it is free,
// otherwise appends after the highest persisted number. A hint already taken
// by a different episode is logged and overridden rather than trusted.
func (u *Upserter) assignEpisodeNumber(ctx context.Context, seriesID uuid.UUID, meta *ProcessedMetadata) (int, error) {
	if meta.Episode > 0 {
		taken, err := u.db.NewSelect().Model((*content.Article)(nil)).
			Where("series_id = ?", seriesID).
			Where("episode_number = ?", meta.Episode).
			Where("slug != ?", meta.Slug).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("episode number check: %w", err)
		}
		if taken == 0 {
			return meta.Episode, nil
		}
		u.logger.Warn("declared episode number already taken",
			"slug", meta.Slug, "declared", meta.Episode)
	}

	var max sql.NullInt64
	err := u.db.NewSelect().Model((*content.Article)(nil)).
		ColumnExpr("max(episode_number)").
		Where("series_id = ?", seriesID).
		Scan(ctx, &max)
	if err != nil {
		return 0, fmt.Errorf("episode number assign: %w", err)
	}
	return int(max.Int64) + 1, nil
}

func (u *Upserter) replaceTags(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	_, err := u.db.NewDelete().Model((*content.ArticleTag)(nil)).
		Where("article_id = ?", articleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("replace tags %s: %w", articleID, err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]*content.ArticleTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, &content.ArticleTag{ArticleID: articleID, TagID: tagID})
	}
	if _, err := u.db.NewInsert().Model(&links).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("replace tags %s: %w", articleID, err)
	}
	return nil
}

func sameSeriesLink(existing *content.Article, seriesID *uuid.UUID, episodeNumber *int) bool {
	if (existing.SeriesID == nil) != (seriesID == nil) {
		return false
	}
	if seriesID != nil && *existing.SeriesID != *seriesID {
		return false
	}
	if (existing.EpisodeNumber == nil) != (episodeNumber == nil) {
		return false
	}
	if episodeNumber != nil && *existing.EpisodeNumber != *episodeNumber {
		return false
	}
	return true
}

func isNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows)
}

func baseTypeFor(contentType markdown.ContentType) string {
	if contentType == markdown.ContentTypeSeries {
		return content.BaseTypeSeries
	}
	return content.BaseTypeArticle
}

func articleTypeFor(meta *ProcessedMetadata) string {
	// Series covers carry no article type; the rule is enforced upstream by
	// the normalizer.
	if meta.ContentType == markdown.ContentTypeSeries {
		return ""
	}
	if meta.ArticleType == "" {
		return content.ArticleTypeStandard
	}
	return meta.ArticleType
}
