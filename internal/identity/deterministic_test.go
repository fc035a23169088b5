package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := AuthorUUID("premchand")
	b := AuthorUUID("premchand")
	if a != b {
		t.Fatalf("expected stable id, got %s and %s", a, b)
	}
	if a == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
}

func TestUUIDNamespacesDoNotCollide(t *testing.T) {
	ids := []uuid.UUID{
		AuthorUUID("folk"),
		CategoryUUID("folk"),
		TagUUID("folk"),
		EditorUUID("folk"),
		LanguageUUID("folk"),
		ArticleUUID("folk"),
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("namespace collision on %s", id)
		}
		seen[id] = true
	}
}

func TestSubCategoryUUIDScopedByParent(t *testing.T) {
	parentA := CategoryUUID("story")
	parentB := CategoryUUID("poem")
	if SubCategoryUUID(parentA, "folk") == SubCategoryUUID(parentB, "folk") {
		t.Fatal("expected distinct ids under different parents")
	}
	if SubCategoryUUID(parentA, "folk") != SubCategoryUUID(parentA, "folk") {
		t.Fatal("expected stable id under same parent")
	}
}
