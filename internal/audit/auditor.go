// Package audit scans persisted state for inconsistencies the pipeline
// tolerates at write time: orphaned references, duplicate slugs and
// episode-count drift. It consumes the same data model as ingestion but runs
// independently of it, and it never mutates rows.
package audit

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/logging"
)

// Auditor performs read-only integrity scans.
type Auditor struct {
	db     *bun.DB
	logger logging.Logger
}

// New builds an auditor over the supplied database.
func New(db *bun.DB, logger logging.Logger) *Auditor {
	return &Auditor{db: db, logger: logging.OrNoOp(logger)}
}

// Scan runs every check and returns the accumulated warnings. Warnings are
// reported, never raised: ingestion keeps running regardless of what the
// auditor finds.
func (a *Auditor) Scan(ctx context.Context) ([]content.IntegrityWarning, error) {
	var warnings []content.IntegrityWarning

	checks := []func(context.Context) ([]content.IntegrityWarning, error){
		a.duplicateSlugs,
		a.orphanedReferences,
		a.episodeCountDrift,
		a.episodeNumbering,
	}
	for _, check := range checks {
		found, err := check(ctx)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, found...)
	}

	a.logger.Info("integrity scan complete", "warnings", len(warnings))
	return warnings, nil
}

func (a *Auditor) duplicateSlugs(ctx context.Context) ([]content.IntegrityWarning, error) {
	var rows []struct {
		Slug  string `bun:"slug"`
		Count int    `bun:"count"`
	}
	err := a.db.NewSelect().Model((*content.Article)(nil)).
		ColumnExpr("slug, count(*) AS count").
		GroupExpr("slug").
		Having("count(*) > 1").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("audit duplicate slugs: %w", err)
	}

	var warnings []content.IntegrityWarning
	for _, row := range rows {
		warnings = append(warnings, content.IntegrityWarning{
			Kind:     content.WarnDuplicateSlug,
			Resource: "article",
			Key:      row.Slug,
			Message:  fmt.Sprintf("%d rows share this slug", row.Count),
		})
	}
	return warnings, nil
}

func (a *Auditor) orphanedReferences(ctx context.Context) ([]content.IntegrityWarning, error) {
	refs := []struct {
		column string
		table  string
	}{
		{"author_id", "authors"},
		{"category_id", "categories"},
		{"sub_category_id", "sub_categories"},
		{"language_id", "languages"},
		{"editor_id", "editors"},
		{"series_id", "articles"},
	}

	var warnings []content.IntegrityWarning
	for _, ref := range refs {
		var slugs []string
		err := a.db.NewSelect().Model((*content.Article)(nil)).
			Column("slug").
			Where(fmt.Sprintf("%s IS NOT NULL", ref.column)).
			Where(fmt.Sprintf("%s NOT IN (SELECT id FROM %s)", ref.column, ref.table)).
			Scan(ctx, &slugs)
		if err != nil {
			return nil, fmt.Errorf("audit orphaned %s: %w", ref.column, err)
		}
		for _, slug := range slugs {
			warnings = append(warnings, content.IntegrityWarning{
				Kind:     content.WarnOrphanedReference,
				Resource: "article",
				Key:      slug,
				Message:  fmt.Sprintf("%s points at a missing %s row", ref.column, ref.table),
			})
		}
	}
	return warnings, nil
}

func (a *Auditor) episodeCountDrift(ctx context.Context) ([]content.IntegrityWarning, error) {
	var rows []struct {
		Slug   string `bun:"slug"`
		Stored int    `bun:"stored"`
		Actual int    `bun:"actual"`
	}
	err := a.db.NewSelect().Model((*content.Article)(nil)).
		ColumnExpr("ar.slug, ar.episode_count AS stored").
		ColumnExpr("(SELECT count(*) FROM articles ep WHERE ep.series_id = ar.id AND ep.deleted_at IS NULL) AS actual").
		Where("ar.base_type = ?", content.BaseTypeSeries).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("audit episode counts: %w", err)
	}

	var warnings []content.IntegrityWarning
	for _, row := range rows {
		if row.Stored == row.Actual {
			continue
		}
		warnings = append(warnings, content.IntegrityWarning{
			Kind:     content.WarnEpisodeCountDrift,
			Resource: "series",
			Key:      row.Slug,
			Message:  fmt.Sprintf("stored count %d, %d active episodes", row.Stored, row.Actual),
		})
	}
	return warnings, nil
}

func (a *Auditor) episodeNumbering(ctx context.Context) ([]content.IntegrityWarning, error) {
	var slugs []string
	err := a.db.NewSelect().Model((*content.Article)(nil)).
		Column("slug").
		Where("series_id IS NOT NULL").
		Where("(episode_number IS NULL OR episode_number < 1)").
		Scan(ctx, &slugs)
	if err != nil {
		return nil, fmt.Errorf("audit episode numbering: %w", err)
	}

	var warnings []content.IntegrityWarning
	for _, slug := range slugs {
		warnings = append(warnings, content.IntegrityWarning{
			Kind:     content.WarnEpisodeNumbering,
			Resource: "article",
			Key:      slug,
			Message:  "episode row without a positive episode number",
		})
	}
	return warnings, nil
}
