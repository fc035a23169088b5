// Package janbhas ingests markdown documents with multilingual front-matter
// into a normalized relational model of articles, series, authors, categories
// and tags. The package wires storage, transliteration and the ingestion
// pipeline behind a single Module facade; the heavy lifting lives in the
// internal packages.
package janbhas

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/audit"
	"github.com/kunaile/janbhas/internal/ingest"
	"github.com/kunaile/janbhas/internal/logging"
	"github.com/kunaile/janbhas/internal/logging/gologger"
	"github.com/kunaile/janbhas/transliterate"
)

// ChangedFile re-exports the pipeline's change descriptor so callers can feed
// their own change detection into Ingest.
type ChangedFile = ingest.ChangedFile

// BatchReport re-exports the per-run ingestion summary.
type BatchReport = ingest.BatchReport

// Re-exported change statuses.
const (
	StatusAdded    = ingest.StatusAdded
	StatusModified = ingest.StatusModified
	StatusRemoved  = ingest.StatusRemoved
)

type options struct {
	logger logging.Logger
	oracle transliterate.Oracle
	db     *bun.DB
	source fs.FS
}

// Option overrides a dependency the module would otherwise build from config.
type Option func(*options)

// WithLogger installs a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithOracle installs a transliteration oracle, bypassing the HTTP client
// built from the config endpoint.
func WithOracle(oracle transliterate.Oracle) Option {
	return func(o *options) { o.oracle = oracle }
}

// WithDB reuses an existing database handle. The module will not close it.
func WithDB(db *bun.DB) Option {
	return func(o *options) { o.db = db }
}

// WithSource reads markdown from the given filesystem instead of the
// configured content directory.
func WithSource(source fs.FS) Option {
	return func(o *options) { o.source = source }
}

// Module is the top level ingestion runtime.
type Module struct {
	cfg      Config
	db       *bun.DB
	ownsDB   bool
	gateway  *transliterate.Gateway
	pipeline *ingest.Pipeline
	auditor  *audit.Auditor
	logger   logging.Logger
}

// New constructs a module from the provided configuration, ensuring the
// schema exists before returning.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		logger = provider.GetLogger("janbhas")
	}

	db := o.db
	ownsDB := false
	if db == nil {
		opened, err := openDatabase(cfg.Storage)
		if err != nil {
			return nil, err
		}
		db = opened
		ownsDB = true
	}

	if err := EnsureSchema(ctx, db); err != nil {
		if ownsDB {
			db.Close()
		}
		return nil, err
	}

	oracle := o.oracle
	if oracle == nil {
		endpoint := strings.TrimSpace(cfg.Transliteration.Endpoint)
		if endpoint == "" {
			if ownsDB {
				db.Close()
			}
			return nil, ErrTransliterationEndpointRequired
		}
		oracle = transliterate.NewHTTPOracle(endpoint, &http.Client{
			Timeout: cfg.Transliteration.Timeout,
		})
	}

	mappings := transliterate.EmptyMappings()
	if dir := strings.TrimSpace(cfg.Transliteration.MappingsDir); dir != "" {
		loaded, err := transliterate.LoadMappings(os.DirFS(dir), ".")
		if err != nil {
			if ownsDB {
				db.Close()
			}
			return nil, err
		}
		mappings = loaded
	}
	gateway := transliterate.NewGateway(oracle, mappings, logger)

	source := o.source
	if source == nil {
		source = os.DirFS(cfg.Content.Dir)
	}

	pipeline, err := ingest.New(ingest.Config{
		Source:  source,
		Pattern: cfg.Content.Pattern,
		Editor:  cfg.Editor,
		DB:      db,
		Gateway: gateway,
		Logger:  logger,
	})
	if err != nil {
		if ownsDB {
			db.Close()
		}
		return nil, err
	}

	return &Module{
		cfg:      cfg,
		db:       db,
		ownsDB:   ownsDB,
		gateway:  gateway,
		pipeline: pipeline,
		auditor:  audit.New(db, logger),
		logger:   logger,
	}, nil
}

// ScanTree walks the content source and reports every matching document as an
// added file. Callers with real change detection should build their own
// ChangedFile list and skip this.
func (m *Module) ScanTree(ctx context.Context, dir string) ([]ChangedFile, error) {
	return m.pipeline.ScanTree(ctx, dir)
}

// Ingest runs one ingestion batch over the supplied change set.
func (m *Module) Ingest(ctx context.Context, files []ChangedFile) (*BatchReport, error) {
	return m.pipeline.Run(ctx, files)
}

// Audit scans persisted state for integrity warnings without mutating it.
func (m *Module) Audit(ctx context.Context) ([]content.IntegrityWarning, error) {
	return m.auditor.Scan(ctx)
}

// DB exposes the underlying handle for host applications that want to query
// the normalized model directly.
func (m *Module) DB() *bun.DB {
	return m.db
}

// Typed repository accessors for host applications reading the normalized
// model. Identifier keys: slug for articles and tags, name for authors,
// categories and editors, code for languages.

func (m *Module) Articles() repository.Repository[*content.Article] {
	return content.NewArticleRepository(m.db)
}

func (m *Module) Authors() repository.Repository[*content.Author] {
	return content.NewAuthorRepository(m.db)
}

func (m *Module) Categories() repository.Repository[*content.Category] {
	return content.NewCategoryRepository(m.db)
}

func (m *Module) Tags() repository.Repository[*content.Tag] {
	return content.NewTagRepository(m.db)
}

func (m *Module) Languages() repository.Repository[*content.Language] {
	return content.NewLanguageRepository(m.db)
}

func (m *Module) Editors() repository.Repository[*content.Editor] {
	return content.NewEditorRepository(m.db)
}

// Close releases the database handle when the module opened it.
func (m *Module) Close() error {
	if !m.ownsDB {
		return nil
	}
	return m.db.Close()
}

func openDatabase(cfg StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite", "sqlite3":
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("janbhas: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Driver)
	}
}
