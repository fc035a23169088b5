package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func LanguageUUID(code string) uuid.UUID {
	return UUID("janbhas:language:" + strings.ToLower(strings.TrimSpace(code)))
}

func AuthorUUID(name string) uuid.UUID {
	return UUID("janbhas:author:" + strings.ToLower(strings.TrimSpace(name)))
}

func CategoryUUID(name string) uuid.UUID {
	return UUID("janbhas:category:" + strings.ToLower(strings.TrimSpace(name)))
}

func SubCategoryUUID(categoryID uuid.UUID, name string) uuid.UUID {
	return UUID("janbhas:sub_category:" + categoryID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}

func TagUUID(name string) uuid.UUID {
	return UUID("janbhas:tag:" + strings.ToLower(strings.TrimSpace(name)))
}

func EditorUUID(name string) uuid.UUID {
	return UUID("janbhas:editor:" + strings.ToLower(strings.TrimSpace(name)))
}

func ArticleUUID(slug string) uuid.UUID {
	return UUID("janbhas:article:" + strings.TrimSpace(slug))
}

func TranslationUUID(table string, entityID, languageID uuid.UUID) uuid.UUID {
	return UUID("janbhas:" + table + ":" + entityID.String() + ":" + languageID.String())
}
