package content

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewLanguageRepository(db *bun.DB) repository.Repository[*Language] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Language]{
		NewRecord: func() *Language { return &Language{} },
		GetID: func(l *Language) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Language, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Language) string {
			return l.Code
		},
	})
}

func NewAuthorRepository(db *bun.DB) repository.Repository[*Author] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Author]{
		NewRecord: func() *Author { return &Author{} },
		GetID: func(a *Author) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Author, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(a *Author) string {
			return a.Name
		},
	})
}

func NewCategoryRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(c *Category) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Category, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(c *Category) string {
			return c.Name
		},
	})
}

func NewTagRepository(db *bun.DB) repository.Repository[*Tag] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Tag]{
		NewRecord: func() *Tag { return &Tag{} },
		GetID: func(t *Tag) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Tag, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(t *Tag) string {
			return t.Slug
		},
	})
}

func NewEditorRepository(db *bun.DB) repository.Repository[*Editor] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Editor]{
		NewRecord: func() *Editor { return &Editor{} },
		GetID: func(e *Editor) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Editor, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(e *Editor) string {
			return e.Name
		},
	})
}

func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *Article) string {
			return a.Slug
		},
	})
}
