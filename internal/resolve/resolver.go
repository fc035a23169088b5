// Package resolve maps vernacular reference values to stable entity ids,
// creating rows on first sight. It is the identity authority for canonical
// names: the transliteration gateway only proposes spellings.
package resolve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/identity"
	"github.com/kunaile/janbhas/internal/logging"
)

// RefInput carries the data needed to find-or-create one reference entity and
// record its per-language display name. EditorID is threaded explicitly; the
// resolver keeps no ambient editor state.
type RefInput struct {
	Name       string
	LocalName  string
	LanguageID uuid.UUID
	EditorID   uuid.UUID
}

// Resolver idempotently resolves reference entities with read-your-writes
// consistency inside a batch: once a canonical name maps to an id, every
// later sighting in the same batch observes that id. A batch-scoped cache
// plus conflict-ignoring inserts guard against duplicate creates racing past
// a read-then-write lookup.
type Resolver struct {
	db        *bun.DB
	languages repository.Repository[*content.Language]
	editors   repository.Repository[*content.Editor]
	tags      repository.Repository[*content.Tag]
	logger    logging.Logger

	mu    sync.Mutex
	cache map[string]uuid.UUID
}

// NewResolver builds a resolver over the supplied database.
func NewResolver(db *bun.DB, logger logging.Logger) *Resolver {
	return &Resolver{
		db:        db,
		languages: content.NewLanguageRepository(db),
		editors:   content.NewEditorRepository(db),
		tags:      content.NewTagRepository(db),
		logger:    logging.OrNoOp(logger),
		cache:     map[string]uuid.UUID{},
	}
}

// ResetBatch drops the batch-scoped cache. Callers invoke it between batches;
// persisted rows remain the source of truth across batches.
func (r *Resolver) ResetBatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[string]uuid.UUID{}
}

// Language resolves an ISO-ish language code, creating the row on first sight.
func (r *Resolver) Language(ctx context.Context, code, name, localName string) (uuid.UUID, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return uuid.Nil, &content.NotFoundError{Resource: "language", Key: code}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := "language:" + code
	if id, ok := r.cache[cacheKey]; ok {
		return id, nil
	}

	existing, err := r.languages.GetByIdentifier(ctx, code)
	if err == nil {
		r.cache[cacheKey] = existing.ID
		return existing.ID, nil
	}
	if !isNotFound(err) {
		return uuid.Nil, mapRepositoryError(err, "language", code)
	}

	record := &content.Language{
		ID:        identity.LanguageUUID(code),
		Code:      code,
		Name:      name,
		LocalName: optionalString(localName),
	}
	if record.Name == "" {
		record.Name = strings.ToUpper(code)
	}
	if _, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("resolve language %s: %w", code, err)
	}

	created, err := r.languages.GetByIdentifier(ctx, code)
	if err != nil {
		return uuid.Nil, mapRepositoryError(err, "language", code)
	}
	r.cache[cacheKey] = created.ID
	r.logger.Debug("resolved language", "code", code, "id", created.ID)
	return created.ID, nil
}

// Editor resolves the acting editor identity for a run.
func (r *Resolver) Editor(ctx context.Context, name string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	key := content.NameKey(name)
	if key == "" {
		return uuid.Nil, &content.NotFoundError{Resource: "editor", Key: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := "editor:" + key
	if id, ok := r.cache[cacheKey]; ok {
		return id, nil
	}

	existing, err := r.editors.GetByIdentifier(ctx, name)
	if err == nil {
		r.cache[cacheKey] = existing.ID
		return existing.ID, nil
	}
	if !isNotFound(err) {
		return uuid.Nil, mapRepositoryError(err, "editor", name)
	}

	record := &content.Editor{ID: identity.EditorUUID(key), Name: name}
	if _, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("resolve editor %s: %w", name, err)
	}

	created, err := r.editors.GetByIdentifier(ctx, name)
	if err != nil {
		return uuid.Nil, mapRepositoryError(err, "editor", name)
	}
	r.cache[cacheKey] = created.ID
	return created.ID, nil
}

// Author resolves an author by canonical name. Repeat sightings return the
// existing id without mutating the stored canonical name or local name.
func (r *Resolver) Author(ctx context.Context, in RefInput) (uuid.UUID, error) {
	key := content.NameKey(in.Name)
	if key == "" {
		return uuid.Nil, &content.NotFoundError{Resource: "author", Key: in.Name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.findOrCreate(ctx, "author:"+key, func(ctx context.Context) (uuid.UUID, error) {
		return r.lookupByName(ctx, (*content.Author)(nil), key)
	}, func(ctx context.Context) error {
		record := &content.Author{
			ID:        identity.AuthorUUID(key),
			Name:      in.Name,
			LocalName: optionalString(in.LocalName),
		}
		_, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx)
		return err
	}, "author", in.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if err := r.recordAuthorTranslation(ctx, id, in); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Category resolves a category by canonical name.
func (r *Resolver) Category(ctx context.Context, in RefInput) (uuid.UUID, error) {
	key := content.NameKey(in.Name)
	if key == "" {
		return uuid.Nil, &content.NotFoundError{Resource: "category", Key: in.Name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.findOrCreate(ctx, "category:"+key, func(ctx context.Context) (uuid.UUID, error) {
		return r.lookupByName(ctx, (*content.Category)(nil), key)
	}, func(ctx context.Context) error {
		record := &content.Category{
			ID:        identity.CategoryUUID(key),
			Name:      in.Name,
			LocalName: optionalString(in.LocalName),
		}
		_, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx)
		return err
	}, "category", in.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if err := r.recordCategoryTranslation(ctx, id, in); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// SubCategory resolves a sub-category scoped under its parent category: the
// identity key is the (categoryID, name) pair, never the name alone.
func (r *Resolver) SubCategory(ctx context.Context, categoryID uuid.UUID, in RefInput) (uuid.UUID, error) {
	key := content.NameKey(in.Name)
	if key == "" || categoryID == uuid.Nil {
		return uuid.Nil, &content.NotFoundError{Resource: "sub_category", Key: in.Name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := "sub_category:" + categoryID.String() + ":" + key
	id, err := r.findOrCreate(ctx, cacheKey, func(ctx context.Context) (uuid.UUID, error) {
		record := new(content.SubCategory)
		err := r.db.NewSelect().Model(record).
			Where("category_id = ?", categoryID).
			Where("lower(name) = ?", key).
			Where("deleted_at IS NULL").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return uuid.Nil, err
		}
		return record.ID, nil
	}, func(ctx context.Context) error {
		record := &content.SubCategory{
			ID:         identity.SubCategoryUUID(categoryID, key),
			CategoryID: categoryID,
			Name:       in.Name,
			LocalName:  optionalString(in.LocalName),
		}
		_, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx)
		return err
	}, "sub_category", in.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if err := r.recordSubCategoryTranslation(ctx, id, in); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Tag resolves a tag by canonical name, generating its slug secondary key.
func (r *Resolver) Tag(ctx context.Context, in RefInput) (uuid.UUID, error) {
	key := content.NameKey(in.Name)
	if key == "" {
		return uuid.Nil, &content.NotFoundError{Resource: "tag", Key: in.Name}
	}

	slug, err := content.TagSlug(in.Name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve tag %s: %w", in.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.findOrCreate(ctx, "tag:"+key, func(ctx context.Context) (uuid.UUID, error) {
		// The slug is derived deterministically from the name, so it doubles
		// as the repository identifier for lookups.
		record, err := r.tags.GetByIdentifier(ctx, slug)
		if err != nil {
			return uuid.Nil, err
		}
		return record.ID, nil
	}, func(ctx context.Context) error {
		record := &content.Tag{
			ID:        identity.TagUUID(key),
			Name:      in.Name,
			Slug:      slug,
			LocalName: optionalString(in.LocalName),
		}
		_, err := r.db.NewInsert().Model(record).On("CONFLICT DO NOTHING").Exec(ctx)
		return err
	}, "tag", in.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if err := r.recordTagTranslation(ctx, id, in); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// findOrCreate runs the select / insert-ignore-conflict / select sequence
// under the resolver mutex, consulting the batch cache first. Caller must
// hold r.mu.
func (r *Resolver) findOrCreate(
	ctx context.Context,
	cacheKey string,
	lookup func(context.Context) (uuid.UUID, error),
	insert func(context.Context) error,
	resource, key string,
) (uuid.UUID, error) {
	if id, ok := r.cache[cacheKey]; ok {
		return id, nil
	}

	id, err := lookup(ctx)
	if err == nil {
		r.cache[cacheKey] = id
		return id, nil
	}
	if !isNotFound(err) {
		return uuid.Nil, fmt.Errorf("resolve %s %q: %w", resource, key, err)
	}

	if err := insert(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("resolve %s %q: %w", resource, key, err)
	}

	id, err = lookup(ctx)
	if err != nil {
		if isNotFound(err) {
			return uuid.Nil, &content.NotFoundError{Resource: resource, Key: key}
		}
		return uuid.Nil, fmt.Errorf("resolve %s %q: %w", resource, key, err)
	}

	r.cache[cacheKey] = id
	r.logger.Debug("created reference entity", "resource", resource, "name", key)
	return id, nil
}

func (r *Resolver) lookupByName(ctx context.Context, model any, key string) (uuid.UUID, error) {
	switch m := model.(type) {
	case *content.Author:
		record := new(content.Author)
		if err := r.nameQuery(record, key).Scan(ctx); err != nil {
			return uuid.Nil, err
		}
		return record.ID, nil
	case *content.Category:
		record := new(content.Category)
		if err := r.nameQuery(record, key).Scan(ctx); err != nil {
			return uuid.Nil, err
		}
		return record.ID, nil
	default:
		return uuid.Nil, fmt.Errorf("resolve: unsupported lookup model %T", m)
	}
}

func (r *Resolver) nameQuery(model any, key string) *bun.SelectQuery {
	return r.db.NewSelect().Model(model).
		Where("lower(name) = ?", key).
		Where("deleted_at IS NULL").
		Limit(1)
}

func (r *Resolver) recordAuthorTranslation(ctx context.Context, authorID uuid.UUID, in RefInput) error {
	if in.LocalName == "" || in.LanguageID == uuid.Nil {
		return nil
	}
	tr := &content.AuthorTranslation{
		ID:         identity.TranslationUUID("author_translations", authorID, in.LanguageID),
		AuthorID:   authorID,
		LanguageID: in.LanguageID,
		Name:       in.LocalName,
		UpdatedBy:  in.EditorID,
	}
	return r.upsertTranslation(ctx, tr, "author_id")
}

func (r *Resolver) recordCategoryTranslation(ctx context.Context, categoryID uuid.UUID, in RefInput) error {
	if in.LocalName == "" || in.LanguageID == uuid.Nil {
		return nil
	}
	tr := &content.CategoryTranslation{
		ID:         identity.TranslationUUID("category_translations", categoryID, in.LanguageID),
		CategoryID: categoryID,
		LanguageID: in.LanguageID,
		Name:       in.LocalName,
		UpdatedBy:  in.EditorID,
	}
	return r.upsertTranslation(ctx, tr, "category_id")
}

func (r *Resolver) recordSubCategoryTranslation(ctx context.Context, subCategoryID uuid.UUID, in RefInput) error {
	if in.LocalName == "" || in.LanguageID == uuid.Nil {
		return nil
	}
	tr := &content.SubCategoryTranslation{
		ID:            identity.TranslationUUID("sub_category_translations", subCategoryID, in.LanguageID),
		SubCategoryID: subCategoryID,
		LanguageID:    in.LanguageID,
		Name:          in.LocalName,
		UpdatedBy:     in.EditorID,
	}
	return r.upsertTranslation(ctx, tr, "sub_category_id")
}

func (r *Resolver) recordTagTranslation(ctx context.Context, tagID uuid.UUID, in RefInput) error {
	if in.LocalName == "" || in.LanguageID == uuid.Nil {
		return nil
	}
	tr := &content.TagTranslation{
		ID:         identity.TranslationUUID("tag_translations", tagID, in.LanguageID),
		TagID:      tagID,
		LanguageID: in.LanguageID,
		Name:       in.LocalName,
		UpdatedBy:  in.EditorID,
	}
	return r.upsertTranslation(ctx, tr, "tag_id")
}

// upsertTranslation records the (entity, language) display name, updating it
// in place on repeat sightings so later spellings win for presentation while
// the canonical name stays untouched.
func (r *Resolver) upsertTranslation(ctx context.Context, model any, entityColumn string) error {
	_, err := r.db.NewInsert().Model(model).
		On(fmt.Sprintf("CONFLICT (%s, language_id) DO UPDATE", entityColumn)).
		Set("name = EXCLUDED.name").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("resolve: record translation: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &content.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func isNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
