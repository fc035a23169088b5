package markdown

import (
	"context"
	"testing"
	"testing/fstest"
)

const sampleDoc = `---
title: The Old Banyan
local_title: पुराना बरगद
author: प्रेमचंद
category: कहानी
lang: hi
---
पेड़ के नीचे एक कहानी।
`

func TestLoadFileParsesFrontMatterAndChecksum(t *testing.T) {
	fsys := fstest.MapFS{
		"stories/banyan.md": &fstest.MapFile{Data: []byte(sampleDoc)},
	}
	loader := NewLoader(fsys, LoaderConfig{})

	doc, err := loader.LoadFile(context.Background(), "stories/banyan.md")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if doc.Raw["title"] != "The Old Banyan" {
		t.Fatalf("unexpected title %v", doc.Raw["title"])
	}
	if len(doc.Body) == 0 {
		t.Fatal("expected body content")
	}
	if len(doc.Checksum) == 0 {
		t.Fatal("expected checksum")
	}

	again, err := loader.LoadFile(context.Background(), "stories/banyan.md")
	if err != nil {
		t.Fatalf("LoadFile() second read error = %v", err)
	}
	if string(doc.Checksum) != string(again.Checksum) {
		t.Fatal("expected stable checksum for identical content")
	}
}

func TestListFilesMatchesPatternRecursively(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md":              &fstest.MapFile{Data: []byte(sampleDoc)},
		"nested/b.md":       &fstest.MapFile{Data: []byte(sampleDoc)},
		"nested/deep/c.md":  &fstest.MapFile{Data: []byte(sampleDoc)},
		"nested/ignore.txt": &fstest.MapFile{Data: []byte("not markdown")},
	}
	loader := NewLoader(fsys, LoaderConfig{Pattern: "*.md"})

	paths, err := loader.ListFiles(context.Background(), ".")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 markdown files, got %v", paths)
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Fatalf("expected sorted paths, got %v", paths)
		}
	}
}

func TestRenderDocumentProducesHTML(t *testing.T) {
	fsys := fstest.MapFS{
		"doc.md": &fstest.MapFile{Data: []byte(sampleDoc)},
	}
	loader := NewLoader(fsys, LoaderConfig{})
	doc, err := loader.LoadFile(context.Background(), "doc.md")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if err := NewRenderer().RenderDocument(doc); err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if len(doc.BodyHTML) == 0 {
		t.Fatal("expected rendered HTML")
	}
}
