// ABOUTME: Tests for the search engine and snippet generation
// ABOUTME: Verifies matching, ranking, windows, facets, and mode handling

package search

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/nainya/docsearch/pkg/document"
	"github.com/nainya/docsearch/pkg/snippet"
)

func setupTestEngine(t *testing.T) (*Engine, *document.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.db")
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := document.NewStore(db)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return NewEngine(store), store
}

func seedDocuments(t *testing.T, store *document.Store) {
	t.Helper()
	conf := 0.72
	docs := []*document.Document{
		{
			ID:               "d1",
			Filename:         "invoice-march.pdf",
			OriginalFilename: "invoice-march.pdf",
			MimeType:         "application/pdf",
			Content:          "Invoice for consulting services rendered in March. Payment due in thirty days.",
			Tags:             []string{"invoice", "finance"},
		},
		{
			ID:               "d2",
			Filename:         "receipt-scan.png",
			OriginalFilename: "receipt-scan.png",
			MimeType:         "image/png",
			OCRText:          "Grocery receipt total amount due 42.17 paid by card",
			Tags:             []string{"receipt"},
			OCR:              document.OCRMetadata{Confidence: &conf, Status: document.OCRCompleted},
		},
		{
			ID:               "d3",
			Filename:         "notes.txt",
			OriginalFilename: "notes.txt",
			MimeType:         "text/plain",
			Content:          "Meeting notes, nothing about money here.",
			Tags:             []string{"notes"},
		},
	}
	for _, doc := range docs {
		if err := store.Put(doc); err != nil {
			t.Fatalf("Failed to seed %s: %v", doc.ID, err)
		}
	}
}

func TestSearchSimple(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "due"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("Expected 2 matches, got %d", resp.Total)
	}
	// Content matches outweigh OCR matches
	if resp.Results[0].Document.ID != "d1" {
		t.Errorf("Expected d1 ranked first, got %s", resp.Results[0].Document.ID)
	}
	for _, res := range resp.Results {
		if res.Rank <= 0 || res.Rank > 1 {
			t.Errorf("Rank out of (0,1]: %f", res.Rank)
		}
		if len(res.Snippets) == 0 {
			t.Errorf("Expected snippets for %s", res.Document.ID)
		}
	}
}

func TestSearchFilenameRanksHighest(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "invoice"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Document.ID != "d1" {
		t.Fatalf("Expected d1 first, got %+v", resp.Results)
	}

	var filenameSnip *snippet.Snippet
	for i := range resp.Results[0].Snippets {
		if resp.Results[0].Snippets[i].Source == snippet.SourceFilename {
			filenameSnip = &resp.Results[0].Snippets[i]
		}
	}
	if filenameSnip == nil {
		t.Fatal("Expected a filename snippet")
	}
	r := filenameSnip.Ranges[0]
	if filenameSnip.Text[r.Start:r.End] != "invoice" {
		t.Errorf("Filename range selects %q", filenameSnip.Text[r.Start:r.End])
	}
}

func TestSearchSnippetRangesSelectTerm(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "receipt"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, res := range resp.Results {
		for _, s := range res.Snippets {
			for _, r := range s.Ranges {
				if r.Start < 0 || r.End > len(s.Text) {
					t.Fatalf("Range out of bounds: %v in %q", r, s.Text)
				}
				if !strings.EqualFold(s.Text[r.Start:r.End], "receipt") {
					t.Errorf("Range selects %q, expected the matched term", s.Text[r.Start:r.End])
				}
			}
		}
	}
}

func TestSearchPhraseMode(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "amount due", Mode: ModePhrase})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Document.ID != "d2" {
		t.Errorf("Phrase search expected only d2, got %+v", resp.Results)
	}

	// Simple mode matches the terms independently
	resp, err = engine.Search(Request{Query: "amount due", Mode: ModeSimple})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Simple search expected 2 matches, got %d", resp.Total)
	}
}

func TestSearchUnsupportedMode(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	for _, mode := range []Mode{ModeFuzzy, ModeBoolean} {
		if _, err := engine.Search(Request{Query: "x", Mode: mode}); !errors.Is(err, ErrUnsupportedMode) {
			t.Errorf("Mode %s: expected ErrUnsupportedMode, got %v", mode, err)
		}
	}
}

func TestSearchFiltersAndPagination(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "due", MimeTypes: []string{"image/png"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Document.ID != "d2" {
		t.Errorf("MIME filter expected only d2, got %+v", resp.Results)
	}

	resp, err = engine.Search(Request{Query: "due", Limit: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 1 {
		t.Errorf("Expected total 2 with 1 returned, got %d / %d", resp.Total, len(resp.Results))
	}

	resp, err = engine.Search(Request{Query: "due", Offset: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("Offset beyond results should return none, got %d", len(resp.Results))
	}
}

func TestSearchNoSnippets(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	include := false
	resp, err := engine.Search(Request{Query: "due", IncludeSnippets: &include})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, res := range resp.Results {
		if len(res.Snippets) != 0 {
			t.Errorf("Expected no snippets, got %d", len(res.Snippets))
		}
	}
}

func TestSuggestionsFromTags(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	resp, err := engine.Search(Request{Query: "inv"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	found := false
	for _, s := range resp.Suggestions {
		if s == "invoice" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'invoice' suggestion, got %v", resp.Suggestions)
	}
}

func TestSuggestionsFromFilenames(t *testing.T) {
	engine, store := setupTestEngine(t)
	doc := &document.Document{
		ID:               "d9",
		Filename:         "quarterly-report.pdf",
		OriginalFilename: "quarterly-report.pdf",
		MimeType:         "application/pdf",
		Content:          "Numbers for the quarter.",
	}
	if err := store.Put(doc); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	resp, err := engine.Search(Request{Query: "quart"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	found := false
	for _, s := range resp.Suggestions {
		if s == "quarterly" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'quarterly' suggestion, got %v", resp.Suggestions)
	}
}

func TestFacets(t *testing.T) {
	engine, store := setupTestEngine(t)
	seedDocuments(t, store)

	facets, err := engine.Facets()
	if err != nil {
		t.Fatalf("Facets failed: %v", err)
	}
	if len(facets.MimeTypes) != 3 {
		t.Errorf("Expected 3 MIME facets, got %v", facets.MimeTypes)
	}
	tagCounts := make(map[string]int)
	for _, f := range facets.Tags {
		tagCounts[f.Value] = f.Count
	}
	if tagCounts["finance"] != 1 || tagCounts["invoice"] != 1 {
		t.Errorf("Unexpected tag facets: %v", facets.Tags)
	}
}

func TestGenerateSnippetsWordBoundaries(t *testing.T) {
	text := strings.Repeat("filler ", 40) + "needle" + strings.Repeat(" trailing", 40)
	doc := &document.Document{ID: "d", Content: text}

	snippets := GenerateSnippets(doc, []string{"needle"}, 80)
	if len(snippets) != 1 {
		t.Fatalf("Expected 1 snippet, got %d", len(snippets))
	}
	s := snippets[0]
	r := s.Ranges[0]
	if s.Text[r.Start:r.End] != "needle" {
		t.Fatalf("Range selects %q", s.Text[r.Start:r.End])
	}
	// Boundaries land between words, never inside one
	if strings.HasPrefix(s.Text, "iller") || strings.HasSuffix(s.Text, "trailin") {
		t.Errorf("Snippet cut mid-word: %q", s.Text)
	}
	if len(s.Text) > 80+20 {
		t.Errorf("Snippet far exceeds requested length: %d bytes", len(s.Text))
	}
}

func TestGenerateSnippetsCaps(t *testing.T) {
	// Many occurrences of the same term must cap at the per-document limit
	doc := &document.Document{
		ID:      "d",
		Content: strings.Repeat("target word and some padding between occurrences here. ", 20),
		OCRText: strings.Repeat("target appears in the scanned text as well right here. ", 20),
	}

	snippets := GenerateSnippets(doc, []string{"target"}, 60)
	if len(snippets) > maxSnippetsPerDoc {
		t.Errorf("Expected at most %d snippets, got %d", maxSnippetsPerDoc, len(snippets))
	}
	perSource := make(map[snippet.Source]int)
	for _, s := range snippets {
		perSource[s.Source]++
	}
	if perSource[snippet.SourceContent] > maxSnippetsPerTerm {
		t.Errorf("Per-term cap exceeded: %v", perSource)
	}
}

func TestGenerateSnippetsMultibyteSafety(t *testing.T) {
	doc := &document.Document{
		ID:      "d",
		Content: strings.Repeat("naïve café über ", 30) + "match" + strings.Repeat(" naïve café über", 30),
	}
	snippets := GenerateSnippets(doc, []string{"match"}, 50)
	if len(snippets) == 0 {
		t.Fatal("Expected a snippet")
	}
	for _, s := range snippets {
		if !strings.Contains(s.Text, "match") {
			t.Errorf("Snippet lost the match: %q", s.Text)
		}
		// A window cut inside a multi-byte rune would corrupt the text
		for _, r := range s.Text {
			if r == '�' {
				t.Errorf("Snippet contains replacement character: %q", s.Text)
			}
		}
	}
}
