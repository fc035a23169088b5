package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/transliterate"
)

var testDBCounter int

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:ingest_test_%d?mode=memory&cache=shared&_fk=1", testDBCounter)
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*content.ArticleTag)(nil))
	t.Cleanup(func() { db.Close() })

	models := []any{
		(*content.Language)(nil),
		(*content.Editor)(nil),
		(*content.Author)(nil),
		(*content.AuthorTranslation)(nil),
		(*content.Category)(nil),
		(*content.CategoryTranslation)(nil),
		(*content.SubCategory)(nil),
		(*content.SubCategoryTranslation)(nil),
		(*content.Tag)(nil),
		(*content.TagTranslation)(nil),
		(*content.Article)(nil),
		(*content.ArticleTag)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(context.Background()); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}

type fixedOracle struct {
	results map[string]string
	err     error
	calls   int
}

func (o *fixedOracle) BatchTransliterate(_ context.Context, items []transliterate.Request) (map[string]string, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	out := map[string]string{}
	for _, item := range items {
		if value, ok := o.results[item.Text]; ok {
			out[item.Text] = value
		}
	}
	return out, nil
}

func hindiOracle() *fixedOracle {
	return &fixedOracle{results: map[string]string{
		"प्रेमचंद": "premchand",
		"कहानी":    "kahani",
		"लोककथा":   "lok katha",
		"ग्रामीण":  "gramin",
	}}
}

const coverDoc = `---
title: Grandmother's Tales
local_title: दादी की कहानियाँ
author: प्रेमचंद
category: कहानी
lang: hi
base_type: series
completed: false
---
Series introduction.
`

const episodeOneDoc = `---
title: The First Night
local_title: पहली रात
author: प्रेमचंद
category: कहानी
lang: hi
series_title: Grandmother's Tales
episode: 1
tags:
  - लोककथा
---
Episode one body.
`

const episodeTwoDoc = `---
title: The Second Night
local_title: दूसरी रात
author: प्रेमचंद
category: कहानी
lang: hi
series_title: Grandmother's Tales
episode: 2
---
Episode two body.
`

const standaloneDoc = `---
title: The Old Banyan
local_title: पुराना बरगद
author: प्रेमचंद
category: कहानी
sub_category: ग्रामीण
lang: hi
published: true
tags:
  - लोककथा
---
Standalone body.
`

func seriesFixture() fstest.MapFS {
	return fstest.MapFS{
		"stories/cover.md":      &fstest.MapFile{Data: []byte(coverDoc)},
		"stories/episode-1.md":  &fstest.MapFile{Data: []byte(episodeOneDoc)},
		"stories/episode-2.md":  &fstest.MapFile{Data: []byte(episodeTwoDoc)},
		"stories/standalone.md": &fstest.MapFile{Data: []byte(standaloneDoc)},
	}
}

func newTestPipeline(t *testing.T, db *bun.DB, source fstest.MapFS, oracle transliterate.Oracle) *Pipeline {
	t.Helper()

	p, err := New(Config{
		Source:  source,
		Pattern: "*.md",
		Editor:  "importer",
		DB:      db,
		Gateway: transliterate.NewGateway(oracle, nil, nil),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestRunIngestsSeriesWithEpisodes(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, seriesFixture(), hindiOracle())
	ctx := context.Background()

	files, err := p.ScanTree(ctx, ".")
	if err != nil {
		t.Fatalf("ScanTree() error = %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %v", files)
	}

	report, err := p.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Created != 4 || report.Rejected != 0 {
		t.Fatalf("unexpected report: %s", report.String())
	}

	cover := new(content.Article)
	err = db.NewSelect().Model(cover).
		Where("base_type = ?", content.BaseTypeSeries).
		Scan(ctx)
	if err != nil {
		t.Fatalf("select cover: %v", err)
	}
	if cover.EpisodeCount != 2 {
		t.Fatalf("expected 2 counted episodes, got %d", cover.EpisodeCount)
	}
	if cover.Slug != "grandmothers-tales-premchand" {
		t.Fatalf("unexpected cover slug %q", cover.Slug)
	}

	var episodes []*content.Article
	err = db.NewSelect().Model(&episodes).
		Where("series_id = ?", cover.ID).
		Order("episode_number").
		Scan(ctx)
	if err != nil {
		t.Fatalf("select episodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if *episodes[0].EpisodeNumber != 1 || *episodes[1].EpisodeNumber != 2 {
		t.Fatalf("unexpected numbering %d, %d", *episodes[0].EpisodeNumber, *episodes[1].EpisodeNumber)
	}

	linked, err := db.NewSelect().Model((*content.ArticleTag)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count tag links: %v", err)
	}
	if linked != 2 {
		t.Fatalf("expected 2 tag links, got %d", linked)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	source := seriesFixture()
	p := newTestPipeline(t, db, source, hindiOracle())
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	if _, err := p.Run(ctx, files); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	report, err := p.Run(ctx, files)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.Created != 0 || report.Updated != 0 || report.Skipped != 4 {
		t.Fatalf("expected all skipped on re-ingest, got %s", report.String())
	}

	total, err := db.NewSelect().Model((*content.Article)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count articles: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected no duplicate rows, got %d", total)
	}
}

func TestRunRejectsDanglingEpisode(t *testing.T) {
	db := newTestDB(t)
	source := fstest.MapFS{
		"stories/orphan.md": &fstest.MapFile{Data: []byte(episodeOneDoc)},
	}
	p := newTestPipeline(t, db, source, hindiOracle())
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	report, err := p.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Rejected != 1 || report.Created != 0 {
		t.Fatalf("expected single rejection, got %s", report.String())
	}
	if report.Rejections[0].Stage != StagePersist {
		t.Fatalf("expected persist-stage rejection, got %+v", report.Rejections[0])
	}
}

func TestRunAbortsBatchOnTransliterationFailure(t *testing.T) {
	db := newTestDB(t)
	oracle := hindiOracle()
	delete(oracle.results, "कहानी")
	p := newTestPipeline(t, db, seriesFixture(), oracle)
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	_, err := p.Run(ctx, files)
	var batchErr *content.TransliterationBatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected TransliterationBatchError, got %v", err)
	}

	counts := map[string]any{
		"articles":   (*content.Article)(nil),
		"authors":    (*content.Author)(nil),
		"categories": (*content.Category)(nil),
		"tags":       (*content.Tag)(nil),
	}
	for table, model := range counts {
		total, dbErr := db.NewSelect().Model(model).Count(ctx)
		if dbErr != nil {
			t.Fatalf("count %s: %v", table, dbErr)
		}
		if total != 0 {
			t.Fatalf("expected no %s rows after aborted batch, got %d", table, total)
		}
	}
}

func TestRunSoftDeletesRemovedFile(t *testing.T) {
	db := newTestDB(t)
	source := seriesFixture()
	p := newTestPipeline(t, db, source, hindiOracle())
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	if _, err := p.Run(ctx, files); err != nil {
		t.Fatalf("seed Run() error = %v", err)
	}

	report, err := p.Run(ctx, []ChangedFile{
		{Path: "stories/episode-2.md", Status: StatusRemoved},
	})
	if err != nil {
		t.Fatalf("removal Run() error = %v", err)
	}
	if report.Removed != 1 {
		t.Fatalf("expected one removal, got %s", report.String())
	}

	removed := new(content.Article)
	err = db.NewSelect().Model(removed).
		Where("source_path = ?", "stories/episode-2.md").
		Scan(ctx)
	if err != nil {
		t.Fatalf("select removed: %v", err)
	}
	if !removed.IsDeleted() {
		t.Fatal("expected soft-delete marker")
	}
	if removed.DeletedBy == nil {
		t.Fatal("expected deleted_by attribution")
	}

	cover := new(content.Article)
	if err := db.NewSelect().Model(cover).Where("base_type = ?", content.BaseTypeSeries).Scan(ctx); err != nil {
		t.Fatalf("select cover: %v", err)
	}
	if cover.EpisodeCount != 1 {
		t.Fatalf("expected recounted episodes 1, got %d", cover.EpisodeCount)
	}
}

func TestRunResurrectsEditedDeletedDocument(t *testing.T) {
	db := newTestDB(t)
	source := seriesFixture()
	p := newTestPipeline(t, db, source, hindiOracle())
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	if _, err := p.Run(ctx, files); err != nil {
		t.Fatalf("seed Run() error = %v", err)
	}
	if _, err := p.Run(ctx, []ChangedFile{
		{Path: "stories/standalone.md", Status: StatusRemoved},
	}); err != nil {
		t.Fatalf("removal Run() error = %v", err)
	}

	report, err := p.Run(ctx, []ChangedFile{
		{Path: "stories/standalone.md", Status: StatusModified},
	})
	if err != nil {
		t.Fatalf("resurrect Run() error = %v", err)
	}
	if report.Updated != 1 {
		t.Fatalf("expected update outcome, got %s", report.String())
	}

	restored := new(content.Article)
	err = db.NewSelect().Model(restored).
		Where("source_path = ?", "stories/standalone.md").
		Scan(ctx)
	if err != nil {
		t.Fatalf("select restored: %v", err)
	}
	if restored.IsDeleted() {
		t.Fatal("expected soft-delete marker cleared")
	}
}

func TestRunWarnsOnRemovalOfUnknownPath(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, fstest.MapFS{}, hindiOracle())
	ctx := context.Background()

	report, err := p.Run(ctx, []ChangedFile{
		{Path: "stories/never-seen.md", Status: StatusRemoved},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Removed != 0 || len(report.Warnings) != 1 {
		t.Fatalf("expected orphan warning, got %s", report.String())
	}
	if report.Warnings[0].Kind != content.WarnOrphanedReference {
		t.Fatalf("unexpected warning %+v", report.Warnings[0])
	}
}

func TestRunRejectsInvalidDocumentWithoutHaltingBatch(t *testing.T) {
	db := newTestDB(t)
	source := seriesFixture()
	source["stories/broken.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Only A Title\n---\nbody\n")}
	p := newTestPipeline(t, db, source, hindiOracle())
	ctx := context.Background()

	files, _ := p.ScanTree(ctx, ".")
	report, err := p.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Created != 4 || report.Rejected != 1 {
		t.Fatalf("expected healthy siblings persisted, got %s", report.String())
	}
	if report.Rejections[0].Stage != StageNormalize {
		t.Fatalf("expected normalize-stage rejection, got %+v", report.Rejections[0])
	}
}
