package transliterate

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/kunaile/janbhas/content"
	"github.com/kunaile/janbhas/internal/logging"
)

// Gateway batches distinct vernacular strings into a single oracle call,
// cleans the returned values and memoizes results for the life of a batch.
// The gateway only proposes spellings; the reference resolver is the actual
// identity authority.
type Gateway struct {
	oracle   Oracle
	mappings *MappingSet
	logger   logging.Logger

	mu   sync.Mutex
	memo map[string]string
}

// NewGateway constructs a gateway. A nil mapping set disables curated lookups.
func NewGateway(oracle Oracle, mappings *MappingSet, logger logging.Logger) *Gateway {
	if mappings == nil {
		mappings = EmptyMappings()
	}
	return &Gateway{
		oracle:   oracle,
		mappings: mappings,
		logger:   logging.OrNoOp(logger),
		memo:     map[string]string{},
	}
}

// Transliterate resolves every request to a cleaned Latin-script canonical
// string, keyed by the original text. Curated mappings win over the oracle;
// memoized results are reused. The whole batch fails when the oracle returns
// a different result count than requested or any result cleans to empty,
// because downstream slug generation has no safe fallback.
func (g *Gateway) Transliterate(ctx context.Context, requests []Request) (map[string]string, error) {
	out := make(map[string]string, len(requests))
	pending := make([]Request, 0, len(requests))
	seen := map[string]struct{}{}

	g.mu.Lock()
	for _, req := range requests {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			continue
		}
		if _, ok := out[text]; ok {
			continue
		}
		if canonical, ok := g.mappings.Lookup(req.Role, req.Language, text); ok {
			out[text] = canonical
			continue
		}
		key := memoKey(text, req.Language)
		if canonical, ok := g.memo[key]; ok {
			out[text] = canonical
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, Request{Text: text, Role: req.Role, Language: req.Language})
	}
	g.mu.Unlock()

	if len(pending) == 0 {
		return out, nil
	}

	raw, err := g.oracle.BatchTransliterate(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(pending) {
		return nil, &content.TransliterationBatchError{Requested: len(pending), Returned: len(raw)}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, req := range pending {
		value, ok := raw[req.Text]
		if !ok {
			return nil, &content.TransliterationBatchError{
				Requested: len(pending),
				Returned:  len(raw),
				Reason:    "oracle response missing input " + strconv.Quote(req.Text),
			}
		}
		cleaned := Clean(value)
		if cleaned == "" {
			return nil, &content.TransliterationBatchError{
				Requested: len(pending),
				Returned:  len(raw),
				Reason:    "empty transliteration for " + strconv.Quote(req.Text),
			}
		}
		out[req.Text] = cleaned
		g.memo[memoKey(req.Text, req.Language)] = cleaned
	}

	g.logger.Debug("transliterated batch", "requested", len(pending), "memoized", len(g.memo))
	return out, nil
}

var (
	nonLatin   = regexp.MustCompile(`[^A-Za-z0-9 .'\-]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Clean strips non-Latin residue from a raw oracle result, collapses
// whitespace and normalizes to title case.
func Clean(raw string) string {
	value := nonLatin.ReplaceAllString(raw, " ")
	value = whitespace.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	words := strings.Split(value, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

func memoKey(text, language string) string {
	return strings.ToLower(language) + "\x00" + text
}
