package content

import (
	"testing"
)

func TestArticleSlugCombinesTitleAndAuthor(t *testing.T) {
	slug, err := ArticleSlug("The Old Banyan", "Premchand")
	if err != nil {
		t.Fatalf("ArticleSlug() error = %v", err)
	}
	if slug != "the-old-banyan-premchand" {
		t.Fatalf("unexpected slug %q", slug)
	}
}

func TestArticleSlugDisambiguatesAuthors(t *testing.T) {
	a, err := ArticleSlug("Village Life", "Premchand")
	if err != nil {
		t.Fatalf("ArticleSlug() error = %v", err)
	}
	b, err := ArticleSlug("Village Life", "Renu")
	if err != nil {
		t.Fatalf("ArticleSlug() error = %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct slugs for same title by different authors, both %q", a)
	}
}

func TestArticleSlugRejectsEmptyInput(t *testing.T) {
	if _, err := ArticleSlug("   ", " "); err == nil {
		t.Fatal("expected error for blank input")
	}
}

func TestTagSlug(t *testing.T) {
	slug, err := TagSlug("Folk Tales")
	if err != nil {
		t.Fatalf("TagSlug() error = %v", err)
	}
	if slug != "folk-tales" {
		t.Fatalf("unexpected slug %q", slug)
	}
}

func TestNameKey(t *testing.T) {
	if NameKey("  Premchand ") != "premchand" {
		t.Fatal("expected trimmed lowercase key")
	}
}
