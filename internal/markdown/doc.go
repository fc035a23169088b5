// Package markdown parses source documents, resolves front-matter aliases
// and validates metadata ahead of transliteration and persistence.
package markdown
