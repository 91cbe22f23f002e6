// ABOUTME: Search engine over the document store
// ABOUTME: Term matching, relevance ranking, facets, and suggestions

package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nainya/docsearch/pkg/document"
)

// Match weights by source. Filename matches outrank content matches, which
// outrank OCR matches
const (
	weightFilename = 4.0
	weightContent  = 2.0
	weightOCRText  = 1.0
)

const maxSuggestions = 5

// Engine executes search requests over a document store
type Engine struct {
	store *document.Store
}

// NewEngine creates a search engine
func NewEngine(store *document.Store) *Engine {
	return &Engine{store: store}
}

// Search runs a request and returns ranked results with snippets
func (e *Engine) Search(req Request) (*Response, error) {
	start := time.Now()

	terms, err := queryTerms(req.Query, req.Mode)
	if err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.SnippetLength <= 0 {
		req.SnippetLength = DefaultSnippetLength
	}
	includeSnippets := req.IncludeSnippets == nil || *req.IncludeSnippets

	docs, err := e.store.List(document.Filter{Tags: req.Tags, MimeTypes: req.MimeTypes})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var results []Result
	for _, doc := range docs {
		rank := rankDocument(doc, terms)
		if rank == 0 {
			continue
		}
		res := Result{Document: doc, Rank: rank}
		if includeSnippets && len(terms) > 0 {
			res.Snippets = GenerateSnippets(doc, terms, req.SnippetLength)
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank > results[j].Rank
	})

	total := len(results)
	if req.Offset >= len(results) {
		results = nil
	} else {
		results = results[req.Offset:]
	}
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	return &Response{
		Results:     results,
		Total:       total,
		QueryTimeMS: time.Since(start).Milliseconds(),
		Suggestions: suggestions(terms, results),
	}, nil
}

// Facets counts MIME types and tags across the whole collection
func (e *Engine) Facets() (*FacetsResponse, error) {
	docs, err := e.store.List(document.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	mimeCounts := make(map[string]int)
	tagCounts := make(map[string]int)
	for _, doc := range docs {
		if doc.MimeType != "" {
			mimeCounts[doc.MimeType]++
		}
		for _, tag := range doc.Tags {
			tagCounts[tag]++
		}
	}
	return &FacetsResponse{
		MimeTypes: sortedFacets(mimeCounts),
		Tags:      sortedFacets(tagCounts),
	}, nil
}

// queryTerms splits the query according to the search mode
func queryTerms(query string, mode Mode) ([]string, error) {
	switch mode {
	case "", ModeSimple:
		return strings.Fields(query), nil
	case ModePhrase:
		trimmed := strings.TrimSpace(query)
		if trimmed == "" {
			return nil, nil
		}
		return []string{trimmed}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

// rankDocument scores a document by weighted match counts, squashed into
// (0, 1]. Zero means no term matched
func rankDocument(doc *document.Document, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	name := strings.ToLower(doc.OriginalFilename)
	if name == "" {
		name = strings.ToLower(doc.Filename)
	}
	content := strings.ToLower(doc.Content)
	ocrText := strings.ToLower(doc.OCRText)

	weighted := 0.0
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" {
			continue
		}
		weighted += weightFilename * float64(strings.Count(name, t))
		weighted += weightContent * float64(strings.Count(content, t))
		weighted += weightOCRText * float64(strings.Count(ocrText, t))
	}
	if weighted == 0 {
		return 0
	}
	return weighted / (weighted + weightFilename)
}

// suggestions proposes refinements drawn from the tags and filename words
// of matched documents that extend the last query term
func suggestions(terms []string, results []Result) []string {
	suggested := []string{}
	if len(terms) == 0 {
		return suggested
	}
	last := strings.ToLower(terms[len(terms)-1])

	seen := make(map[string]bool)
	add := func(candidate string) bool {
		lower := strings.ToLower(candidate)
		if lower == last || !strings.HasPrefix(lower, last) || seen[lower] {
			return false
		}
		seen[lower] = true
		suggested = append(suggested, candidate)
		return len(suggested) >= maxSuggestions
	}

	for _, res := range results {
		for _, tag := range res.Document.Tags {
			if add(tag) {
				return suggested
			}
		}
		name := res.Document.OriginalFilename
		if name == "" {
			name = res.Document.Filename
		}
		for _, word := range strings.FieldsFunc(name, func(r rune) bool { return !isWordRune(r) }) {
			if add(word) {
				return suggested
			}
		}
	}
	return suggested
}

func sortedFacets(counts map[string]int) []FacetItem {
	items := make([]FacetItem, 0, len(counts))
	for value, count := range counts {
		items = append(items, FacetItem{Value: value, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Value < items[j].Value
	})
	return items
}
