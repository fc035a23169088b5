package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// Document is the ephemeral, per-file unit the pipeline works on. It is
// produced and consumed within one run and never persisted directly.
type Document struct {
	FilePath     string
	Raw          map[string]any
	Body         []byte
	BodyHTML     []byte
	Checksum     []byte
	LastModified time.Time
}

// ParseFrontMatter extracts the raw metadata map and Markdown body from the
// provided source bytes. Alias resolution happens later in the Normalizer;
// this function keeps every key the author wrote.
func ParseFrontMatter(source []byte) (map[string]any, []byte, error) {
	var meta map[string]any

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	if meta == nil {
		meta = map[string]any{}
	}
	return meta, body, nil
}

// BuildDocument assembles a Document from the supplied file path, raw content
// and modification time. BodyHTML is left empty so callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}

	return &Document{
		FilePath:     path,
		Raw:          meta,
		Body:         body,
		LastModified: modified,
	}, nil
}
