package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Loader turns filesystem paths into parsed documents with checksums.
type Loader struct {
	fs      fs.FS
	pattern string
}

// LoaderConfig configures how source files are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the supplied glob
	// (defaults to "*.md").
	Pattern string
}

// NewLoader constructs a Loader over the provided filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &Loader{fs: filesystem, pattern: pattern}
}

// LoadFile reads and parses a single document.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel := filepath.ToSlash(filepath.Clean(path))

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("loader stat %s: %w", rel, err)
	}

	doc, err := BuildDocument(rel, data, info.ModTime())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]

	return doc, nil
}

// ListFiles walks dir and returns every path matching the loader pattern,
// sorted for deterministic batches. Full-corpus scans feed these paths to the
// pipeline with status "added".
func (l *Loader) ListFiles(ctx context.Context, dir string) ([]string, error) {
	root := filepath.ToSlash(filepath.Clean(dir))
	if root == "" {
		root = "."
	}

	var paths []string
	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		match, err := filepath.Match(l.pattern, filepath.Base(path))
		if err != nil {
			return err
		}
		if match {
			paths = append(paths, filepath.ToSlash(path))
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("loader walk %s: %w", root, walkErr)
	}

	sort.Strings(paths)
	return paths, nil
}
