// ABOUTME: Search request and response models
// ABOUTME: Mirrors the JSON API surface for full-text document search

package search

import (
	"errors"

	"github.com/nainya/docsearch/pkg/document"
	"github.com/nainya/docsearch/pkg/snippet"
)

// Mode selects the matching algorithm
type Mode string

const (
	// ModeSimple splits the query on whitespace and matches each term
	ModeSimple Mode = "simple"
	// ModePhrase matches the query as one exact phrase
	ModePhrase Mode = "phrase"
	// ModeFuzzy and ModeBoolean are accepted by the request model but not
	// implemented by this engine
	ModeFuzzy   Mode = "fuzzy"
	ModeBoolean Mode = "boolean"
)

// ErrUnsupportedMode is returned for search modes this engine does not
// implement
var ErrUnsupportedMode = errors.New("unsupported search mode")

// Defaults applied by Engine.Search when request fields are zero
const (
	DefaultLimit         = 25
	DefaultSnippetLength = 200
)

// Request describes a search over the document store
type Request struct {
	Query           string   `json:"query"`
	Tags            []string `json:"tags,omitempty"`
	MimeTypes       []string `json:"mime_types,omitempty"`
	Limit           int      `json:"limit,omitempty"`
	Offset          int      `json:"offset,omitempty"`
	IncludeSnippets *bool    `json:"include_snippets,omitempty"` // default true
	SnippetLength   int      `json:"snippet_length,omitempty"`
	Mode            Mode     `json:"search_mode,omitempty"`
}

// Result is one matching document with its relevance rank and snippets
type Result struct {
	Document *document.Document `json:"document"`
	Rank     float64            `json:"search_rank"`
	Snippets []snippet.Snippet  `json:"snippets"`
}

// Response is the outcome of a search request
type Response struct {
	Results     []Result `json:"results"`
	Total       int      `json:"total"`
	QueryTimeMS int64    `json:"query_time_ms"`
	Suggestions []string `json:"suggestions"`
}

// FacetItem is one facet value with its document count
type FacetItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetsResponse holds MIME-type and tag facets over the collection
type FacetsResponse struct {
	MimeTypes []FacetItem `json:"mime_types"`
	Tags      []FacetItem `json:"tags"`
}
