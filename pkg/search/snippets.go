// ABOUTME: Snippet generation for search matches
// ABOUTME: Word-boundary windows around term matches with highlight ranges

package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nainya/docsearch/pkg/document"
	"github.com/nainya/docsearch/pkg/snippet"
)

// Snippet caps: at most 3 per term scan, at most 5 per document
const (
	maxSnippetsPerTerm = 3
	maxSnippetsPerDoc  = 5
)

// GenerateSnippets extracts up to five highlighted snippets for the given
// terms from a document's content and OCR text, plus a filename snippet
// when a term matches the filename. Snippet boundaries are pulled to word
// edges so matches are not shown mid-word; the highlight range is expressed
// in the snippet's own coordinate space
func GenerateSnippets(doc *document.Document, terms []string, snippetLength int) []snippet.Snippet {
	if snippetLength <= 0 {
		snippetLength = DefaultSnippetLength
	}
	var snippets []snippet.Snippet

	sources := []struct {
		src  snippet.Source
		text string
		conf *float64
	}{
		{snippet.SourceContent, doc.Content, nil},
		{snippet.SourceOCRText, doc.OCRText, doc.OCR.Confidence},
	}

	for _, s := range sources {
		if s.text == "" {
			continue
		}
		lower := strings.ToLower(s.text)
		for _, term := range terms {
			termLower := strings.ToLower(term)
			if termLower == "" {
				continue
			}
			pos := 0
			found := 0
			for found < maxSnippetsPerTerm && len(snippets) < maxSnippetsPerDoc {
				idx := strings.Index(lower[pos:], termLower)
				if idx < 0 {
					break
				}
				matchPos := pos + idx

				snippetStart := 0
				if matchPos >= snippetLength/2 {
					snippetStart = wordBoundary(s.text, matchPos-snippetLength/2, false)
				}
				snippetEnd := len(s.text)
				if desired := snippetStart + snippetLength; desired < len(s.text) {
					snippetEnd = wordBoundary(s.text, desired, true)
				}

				snippets = append(snippets, snippet.Snippet{
					Text: s.text[snippetStart:snippetEnd],
					Ranges: []snippet.HighlightRange{{
						Start: matchPos - snippetStart,
						End:   matchPos - snippetStart + len(termLower),
					}},
					Source:     s.src,
					Confidence: s.conf,
				})
				found++
				pos = matchPos + len(termLower)
			}
		}
	}

	if fn := filenameSnippet(doc, terms); fn != nil && len(snippets) < maxSnippetsPerDoc {
		snippets = append(snippets, *fn)
	}
	if len(snippets) > maxSnippetsPerDoc {
		snippets = snippets[:maxSnippetsPerDoc]
	}
	return snippets
}

// filenameSnippet returns a single snippet over the filename with one
// highlight range per term match, or nil when nothing matches
func filenameSnippet(doc *document.Document, terms []string) *snippet.Snippet {
	name := doc.OriginalFilename
	if name == "" {
		name = doc.Filename
	}
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	var ranges []snippet.HighlightRange
	for _, term := range terms {
		termLower := strings.ToLower(term)
		if termLower == "" {
			continue
		}
		pos := 0
		for {
			idx := strings.Index(lower[pos:], termLower)
			if idx < 0 {
				break
			}
			start := pos + idx
			ranges = append(ranges, snippet.HighlightRange{Start: start, End: start + len(termLower)})
			pos = start + len(termLower)
		}
	}
	if len(ranges) == 0 {
		return nil
	}
	return &snippet.Snippet{Text: name, Ranges: ranges, Source: snippet.SourceFilename}
}

// wordBoundary moves a byte offset outward to the nearest word edge,
// backward or forward, never splitting a multi-byte rune
func wordBoundary(text string, pos int, forward bool) int {
	if pos >= len(text) {
		return len(text)
	}
	if pos < 0 {
		pos = 0
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}

	if forward {
		for pos < len(text) {
			r, size := utf8.DecodeRuneInString(text[pos:])
			if !isWordRune(r) {
				break
			}
			pos += size
		}
	} else {
		for pos > 0 {
			r, size := utf8.DecodeLastRuneInString(text[:pos])
			if !isWordRune(r) {
				break
			}
			pos -= size
		}
	}
	return pos
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
