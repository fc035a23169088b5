package janbhas_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/kunaile/janbhas"
	"github.com/kunaile/janbhas/transliterate"
)

type mapOracle map[string]string

func (m mapOracle) BatchTransliterate(_ context.Context, items []transliterate.Request) (map[string]string, error) {
	out := map[string]string{}
	for _, item := range items {
		if value, ok := m[item.Text]; ok {
			out[item.Text] = value
		}
	}
	return out, nil
}

func testConfig() janbhas.Config {
	cfg := janbhas.DefaultConfig()
	cfg.Editor = "importer"
	cfg.Logging.Level = "error"
	return cfg
}

func newModuleDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestModuleEndToEnd(t *testing.T) {
	source := fstest.MapFS{
		"stories/banyan.md": &fstest.MapFile{Data: []byte(`---
title: The Old Banyan
local_title: पुराना बरगद
author: प्रेमचंद
category: कहानी
lang: hi
published: true
---
Body text.
`)},
	}
	oracle := mapOracle{"प्रेमचंद": "premchand", "कहानी": "kahani"}

	ctx := context.Background()
	module, err := janbhas.New(ctx, testConfig(),
		janbhas.WithDB(newModuleDB(t)),
		janbhas.WithOracle(oracle),
		janbhas.WithSource(source),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer module.Close()

	files, err := module.ScanTree(ctx, ".")
	if err != nil {
		t.Fatalf("ScanTree() error = %v", err)
	}
	report, err := module.Ingest(ctx, files)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("expected one created row, got %s", report.String())
	}

	article, err := module.Articles().GetByIdentifier(ctx, "the-old-banyan-premchand")
	if err != nil {
		t.Fatalf("get article by slug: %v", err)
	}
	if !article.Published {
		t.Fatal("expected published flag persisted")
	}

	author, err := module.Authors().GetByIdentifier(ctx, "Premchand")
	if err != nil {
		t.Fatalf("get author by name: %v", err)
	}
	if article.AuthorID != author.ID {
		t.Fatalf("article author %s does not match resolved author %s", article.AuthorID, author.ID)
	}

	category, err := module.Categories().GetByIdentifier(ctx, "Kahani")
	if err != nil {
		t.Fatalf("get category by name: %v", err)
	}
	if article.CategoryID != category.ID {
		t.Fatalf("article category %s does not match resolved category %s", article.CategoryID, category.ID)
	}

	language, err := module.Languages().GetByIdentifier(ctx, "hi")
	if err != nil {
		t.Fatalf("get language by code: %v", err)
	}
	if article.LanguageID != language.ID {
		t.Fatalf("article language %s does not match resolved language %s", article.LanguageID, language.ID)
	}

	warnings, err := module.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected clean audit, got %v", warnings)
	}
}

func TestNewRequiresOracleOrEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Transliteration.Endpoint = ""

	_, err := janbhas.New(context.Background(), cfg, janbhas.WithDB(newModuleDB(t)))
	if !errors.Is(err, janbhas.ErrTransliterationEndpointRequired) {
		t.Fatalf("expected ErrTransliterationEndpointRequired, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Editor = ""

	_, err := janbhas.New(context.Background(), cfg)
	if !errors.Is(err, janbhas.ErrEditorRequired) {
		t.Fatalf("expected ErrEditorRequired, got %v", err)
	}
}
