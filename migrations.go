package janbhas

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/kunaile/janbhas/content"
)

// EnsureSchema creates every table the module needs, in dependency order.
// Creation is idempotent so callers can run it on every start.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	db.RegisterModel((*content.ArticleTag)(nil))

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
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx); err != nil {
			return fmt.Errorf("janbhas: create table for %T: %w", model, err)
		}
	}
	return nil
}
