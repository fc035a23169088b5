// Package ingest orchestrates one batch through the content pipeline:
// normalization, batched transliteration, reference resolution and the
// two-phase article/series upsert.
package ingest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/logging"
	"github.com/kunaile/janbhas/internal/markdown"
	"github.com/kunaile/janbhas/internal/resolve"
	"github.com/kunaile/janbhas/transliterate"
)

var (
	ErrDatabaseRequired = errors.New("ingest: database is required")
	ErrGatewayRequired  = errors.New("ingest: transliteration gateway is required")
	ErrEditorRequired   = errors.New("ingest: editor attribution is required")
	ErrSourceRequired   = errors.New("ingest: source filesystem is required")
)

// Config wires the pipeline's collaborators.
type Config struct {
	// Source is the filesystem the changed-file paths resolve against.
	Source fs.FS
	// Pattern limits full scans to matching files (defaults to "*.md").
	Pattern string
	// Editor names the identity every write of the run is attributed to.
	Editor string
	DB     *bun.DB
	// Gateway batches vernacular strings to the transliteration oracle.
	Gateway *transliterate.Gateway
	Logger  logging.Logger
}

// Pipeline executes ingestion batches. One invocation of Run processes one
// set of changed files; every operation is idempotent by slug or canonical
// name, so a failed batch is safe to re-run.
type Pipeline struct {
	loader     *markdown.Loader
	normalizer *markdown.Normalizer
	renderer   *markdown.Renderer
	gateway    *transliterate.Gateway
	resolver   *resolve.Resolver
	upserter   *Upserter
	logger     logging.Logger
	editor     string
}

// New builds a pipeline from the supplied configuration.
func New(cfg Config) (*Pipeline, error) {
	if cfg.DB == nil {
		return nil, ErrDatabaseRequired
	}
	if cfg.Gateway == nil {
		return nil, ErrGatewayRequired
	}
	if strings.TrimSpace(cfg.Editor) == "" {
		return nil, ErrEditorRequired
	}
	if cfg.Source == nil {
		return nil, ErrSourceRequired
	}

	logger := logging.OrNoOp(cfg.Logger)
	return &Pipeline{
		loader:     markdown.NewLoader(cfg.Source, markdown.LoaderConfig{Pattern: cfg.Pattern}),
		normalizer: markdown.NewNormalizer(logger),
		renderer:   markdown.NewRenderer(),
		gateway:    cfg.Gateway,
		resolver:   resolve.NewResolver(cfg.DB, logger),
		upserter:   NewUpserter(cfg.DB, logger),
		logger:     logger,
		editor:     strings.TrimSpace(cfg.Editor),
	}, nil
}

// ScanTree produces a full-corpus batch: every matching file under dir with
// status "added". Webhook and git-diff collaborators produce the same tuple
// shape externally.
func (p *Pipeline) ScanTree(ctx context.Context, dir string) ([]ChangedFile, error) {
	paths, err := p.loader.ListFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	files := make([]ChangedFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, ChangedFile{Path: path, Status: StatusAdded})
	}
	return files, nil
}

type workItem struct {
	file        ChangedFile
	doc         *markdown.Document
	fm          *markdown.NormalizedFrontmatter
	contentType markdown.ContentType
	state       docState
	meta        *ProcessedMetadata
}

func (w *workItem) live() bool {
	return w.state != stateRejected && w.file.Status != StatusRemoved
}

// Run processes one batch. Document-level failures are collected into the
// report; batch-level failures (transliteration count mismatch, storage
// unavailability) return an error and leave no article rows from the batch
// behind any unfetched transliteration.
func (p *Pipeline) Run(ctx context.Context, files []ChangedFile) (*BatchReport, error) {
	report := NewBatchReport()
	report.Seen = len(files)

	p.resolver.ResetBatch()

	items := p.normalizeAll(ctx, files, report)

	mapping, err := p.transliterateAll(ctx, items, report)
	if err != nil {
		return report, err
	}

	editorID, err := p.resolver.Editor(ctx, p.editor)
	if err != nil {
		return report, fmt.Errorf("resolve run editor: %w", err)
	}

	p.resolveAll(ctx, items, mapping, editorID, report)
	p.persistAll(ctx, items, editorID, report)
	p.removeAll(ctx, items, editorID, report)

	p.logger.Info("batch complete", "summary", report.String())
	return report, nil
}

// normalizeAll parses and validates every document. Documents are independent
// here so the stage fans out one goroutine per file.
func (p *Pipeline) normalizeAll(ctx context.Context, files []ChangedFile, report *BatchReport) []*workItem {
	items := make([]*workItem, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		items[i] = &workItem{file: file, state: statePending}
		if file.Status == StatusRemoved {
			continue
		}

		wg.Add(1)
		go func(item *workItem) {
			defer wg.Done()

			doc, err := p.loader.LoadFile(ctx, item.file.Path)
			if err != nil {
				item.state = stateRejected
				report.mu.Lock()
				report.reject(item.file.Path, StageParse, err)
				report.mu.Unlock()
				return
			}
			item.doc = doc
			item.state = stateParsed

			fm, contentType, err := p.normalizer.Normalize(doc)
			if err != nil {
				item.state = stateRejected
				report.mu.Lock()
				report.reject(item.file.Path, StageNormalize, err)
				report.mu.Unlock()
				return
			}

			if err := p.renderer.RenderDocument(doc); err != nil {
				item.state = stateRejected
				report.mu.Lock()
				report.reject(item.file.Path, StageRender, err)
				report.mu.Unlock()
				return
			}

			item.fm = fm
			item.contentType = contentType
			item.state = stateNormalized
		}(items[i])
	}
	wg.Wait()

	for _, item := range items {
		if item.state == stateNormalized {
			report.Parsed++
		}
	}
	return items
}

// transliterateAll collects every distinct vernacular string of the batch
// into one oracle call. Failure aborts the whole batch: slug generation has
// no fallback for a missing mapping.
func (p *Pipeline) transliterateAll(ctx context.Context, items []*workItem, report *BatchReport) (map[string]string, error) {
	var requests []transliterate.Request
	for _, item := range items {
		if !item.live() || item.fm == nil {
			continue
		}
		fm := item.fm
		requests = append(requests,
			transliterate.Request{Text: fm.Author, Role: transliterate.RoleAuthor, Language: fm.Lang},
			transliterate.Request{Text: fm.Category, Role: transliterate.RoleCategory, Language: fm.Lang},
		)
		if fm.SubCategory != "" {
			requests = append(requests, transliterate.Request{
				Text: fm.SubCategory, Role: transliterate.RoleSubCategory, Language: fm.Lang,
			})
		}
		for _, tag := range fm.Tags {
			requests = append(requests, transliterate.Request{
				Text: tag, Role: transliterate.RoleTag, Language: fm.Lang,
			})
		}
	}

	mapping, err := p.gateway.Transliterate(ctx, requests)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !item.live() || item.fm == nil {
			continue
		}
		item.state = stateTransliterated
		item.meta = p.buildMetadata(item)
		report.Transliterated++
	}
	return mapping, nil
}

func (p *Pipeline) buildMetadata(item *workItem) *ProcessedMetadata {
	fm := item.fm
	return &ProcessedMetadata{
		SourcePath:  item.file.Path,
		Title:       fm.Title,
		LocalTitle:  fm.LocalTitle,
		Body:        string(item.doc.Body),
		BodyHTML:    string(item.doc.BodyHTML),
		Checksum:    hex.EncodeToString(item.doc.Checksum),
		ContentType: item.contentType,
		ArticleType: fm.ArticleType,
		SeriesTitle: fm.SeriesTitle,
		Episode:     fm.Episode,
		Completed:   fm.Completed,
		Published:   fm.Published,
		Featured:    fm.Featured,
	}
}

// resolveAll maps the batch's vernacular references to entity ids. Reference
// resolution must fully complete before any upsert because article rows hold
// foreign keys into the tables populated here.
func (p *Pipeline) resolveAll(ctx context.Context, items []*workItem, mapping map[string]string, editorID uuid.UUID, report *BatchReport) {
	for _, item := range items {
		if !item.live() || item.meta == nil {
			continue
		}
		if err := p.resolveItem(ctx, item, mapping, editorID); err != nil {
			item.state = stateRejected
			report.reject(item.file.Path, StageResolve, err)
			continue
		}
		item.state = stateReferencesResolved
		report.Resolved++
	}
}

func (p *Pipeline) resolveItem(ctx context.Context, item *workItem, mapping map[string]string, editorID uuid.UUID) error {
	fm := item.fm
	meta := item.meta

	languageID, err := p.resolver.Language(ctx, fm.Lang, "", "")
	if err != nil {
		return err
	}
	meta.LanguageID = languageID

	canonicalAuthor := canonical(mapping, fm.Author)
	authorID, err := p.resolver.Author(ctx, resolve.RefInput{
		Name:       canonicalAuthor,
		LocalName:  fm.Author,
		LanguageID: languageID,
		EditorID:   editorID,
	})
	if err != nil {
		return err
	}
	meta.AuthorID = authorID

	categoryID, err := p.resolver.Category(ctx, resolve.RefInput{
		Name:       canonical(mapping, fm.Category),
		LocalName:  fm.Category,
		LanguageID: languageID,
		EditorID:   editorID,
	})
	if err != nil {
		return err
	}
	meta.CategoryID = categoryID

	if fm.SubCategory != "" {
		subCategoryID, err := p.resolver.SubCategory(ctx, categoryID, resolve.RefInput{
			Name:       canonical(mapping, fm.SubCategory),
			LocalName:  fm.SubCategory,
			LanguageID: languageID,
			EditorID:   editorID,
		})
		if err != nil {
			return err
		}
		meta.SubCategoryID = &subCategoryID
	}

	for _, tag := range fm.Tags {
		tagID, err := p.resolver.Tag(ctx, resolve.RefInput{
			Name:       canonical(mapping, tag),
			LocalName:  tag,
			LanguageID: languageID,
			EditorID:   editorID,
		})
		if err != nil {
			return err
		}
		meta.TagIDs = append(meta.TagIDs, tagID)
	}

	slug, err := content.ArticleSlug(fm.Title, canonicalAuthor)
	if err != nil {
		return err
	}
	meta.Slug = slug
	return nil
}

// canonical returns the transliterated spelling of a vernacular string.
// Strings already in Latin script come back from the mapping unchanged or
// not at all; the raw text is the fallback for the latter.
func canonical(mapping map[string]string, text string) string {
	if value, ok := mapping[strings.TrimSpace(text)]; ok {
		return value
	}
	return text
}

// persistAll runs the two-phase upsert: series covers and standalone articles
// first, then episodes, so an episode in the same batch as its cover always
// finds the series row. Episodes of one series serialize through this loop,
// keeping count recomputation free of lost updates.
func (p *Pipeline) persistAll(ctx context.Context, items []*workItem, editorID uuid.UUID, report *BatchReport) {
	passes := [2]func(*workItem) bool{
		func(w *workItem) bool { return w.contentType != markdown.ContentTypeEpisode },
		func(w *workItem) bool { return w.contentType == markdown.ContentTypeEpisode },
	}

	for _, include := range passes {
		for _, item := range items {
			if item.state != stateReferencesResolved || !include(item) {
				continue
			}
			outcome, _, err := p.upserter.UpsertArticle(ctx, item.meta, editorID)
			if err != nil {
				item.state = stateRejected
				report.reject(item.file.Path, StagePersist, err)
				continue
			}
			item.state = statePersisted
			switch outcome {
			case OutcomeCreated:
				report.Created++
			case OutcomeUpdated:
				report.Updated++
			case OutcomeSkipped:
				report.Skipped++
			}
		}
	}
}

func (p *Pipeline) removeAll(ctx context.Context, items []*workItem, editorID uuid.UUID, report *BatchReport) {
	for _, item := range items {
		if item.file.Status != StatusRemoved {
			continue
		}
		removed, err := p.upserter.SoftDeleteByPath(ctx, item.file.Path, editorID)
		if err != nil {
			report.reject(item.file.Path, StagePersist, err)
			continue
		}
		if !removed {
			report.warn(content.IntegrityWarning{
				Kind:     content.WarnOrphanedReference,
				Resource: "article",
				Key:      item.file.Path,
				Message:  "removed file matches no active row",
			})
			continue
		}
		report.Removed++
	}
}
