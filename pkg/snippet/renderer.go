// ABOUTME: Segment partitioning, context windowing, and view rendering
// ABOUTME: Pure functions over snippets; inputs are never mutated

package snippet

import (
	"sort"
	"strings"
)

// ellipsis is the literal affix used when a context window cuts off text.
// Three ASCII dots keep the offset arithmetic in plain byte units
const ellipsis = "..."

// clampRange forces a range into [0, n] with Start <= End. An inverted
// range collapses to an empty one at its clamped start
func clampRange(r HighlightRange, n int) HighlightRange {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Start > n {
		r.Start = n
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	if r.End > n {
		r.End = n
	}
	return r
}

// MergeRanges clamps ranges to the text bounds, sorts them by Start with
// ties broken by End, and coalesces any pair where the later range starts
// at or before the earlier one's end. The merge keeps overlapping input
// from duplicating characters during partitioning
func MergeRanges(text string, ranges []HighlightRange) []HighlightRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]HighlightRange, len(ranges))
	for i, r := range ranges {
		sorted[i] = clampRange(r, len(text))
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := make([]HighlightRange, 0, len(sorted))
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Partition splits text into alternating plain and highlighted segments.
// Concatenating the segment texts in order reproduces text exactly. Empty
// segments are dropped, so a degenerate range (Start == End) emits nothing
// and does not disturb neighboring boundaries. With no ranges the result
// is a single plain segment covering the whole text
func Partition(text string, ranges []HighlightRange) []Segment {
	merged := MergeRanges(text, ranges)

	segments := make([]Segment, 0, 2*len(merged)+1)
	cursor := 0
	for _, r := range merged {
		if r.End == r.Start {
			continue
		}
		if r.Start > cursor {
			segments = append(segments, Segment{Kind: SegmentPlain, Text: text[cursor:r.Start]})
		}
		segments = append(segments, Segment{Kind: SegmentHighlighted, Text: text[r.Start:r.End]})
		cursor = r.End
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Kind: SegmentPlain, Text: text[cursor:]})
	}
	return segments
}

// ExtractContext returns a copy of s windowed to contextLength bytes of
// context around the first and last highlight, with the ranges remapped
// into the excerpt's coordinate space. A literal "..." is prefixed when the
// window starts after the beginning of the text and appended when it ends
// before the end. Remapped ranges are clamped to the excerpt bounds, so a
// malformed input range degenerates to an empty highlight instead of
// producing invalid offsets. The input snippet is not modified.
//
// With no ranges the snippet is returned unchanged (modulo a copied ranges
// slice); callers are expected to window only snippets that have matches
func ExtractContext(s Snippet, contextLength int) Snippet {
	out := s
	out.Ranges = append([]HighlightRange(nil), s.Ranges...)

	merged := MergeRanges(s.Text, s.Ranges)
	if len(merged) == 0 {
		return out
	}

	first := merged[0]
	last := merged[len(merged)-1]

	windowStart := first.Start - contextLength
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := last.End + contextLength
	if windowEnd > len(s.Text) {
		windowEnd = len(s.Text)
	}

	var b strings.Builder
	prefixLen := 0
	if windowStart > 0 {
		b.WriteString(ellipsis)
		prefixLen = len(ellipsis)
	}
	b.WriteString(s.Text[windowStart:windowEnd])
	if windowEnd < len(s.Text) {
		b.WriteString(ellipsis)
	}
	excerpt := b.String()

	for i, r := range out.Ranges {
		r = clampRange(r, len(s.Text))
		r.Start = r.Start - windowStart + prefixLen
		r.End = r.End - windowStart + prefixLen
		out.Ranges[i] = clampRange(r, len(excerpt))
	}

	out.Text = excerpt
	return out
}

// Render applies the presentation policy for the requested view mode.
//
// Compact keeps only the highlighted segments and suppresses metadata.
// Detailed keeps the full partition, shows metadata, and flags a
// confidence badge when the OCR confidence is below 0.8. Context windows
// the snippet first, suppresses metadata, and sets a monospace hint
func Render(s Snippet, opts DisplayOptions) Rendered {
	opts = opts.Normalize()
	out := Rendered{
		Snippet:  s,
		Style:    opts.HighlightStyle,
		FontSize: opts.FontSize,
	}

	switch opts.ViewMode {
	case ViewCompact:
		for _, seg := range Partition(s.Text, s.Ranges) {
			if seg.Kind == SegmentHighlighted {
				out.Segments = append(out.Segments, seg)
			}
		}
	case ViewContext:
		windowed := s
		if len(s.Ranges) > 0 {
			windowed = ExtractContext(s, opts.ContextLength)
		}
		out.Snippet = windowed
		out.Segments = Partition(windowed.Text, windowed.Ranges)
		out.Monospace = true
	default:
		out.Segments = Partition(s.Text, s.Ranges)
		out.ShowMetadata = true
		out.ShowConfidence = s.Confidence != nil && *s.Confidence < confidenceBadgeThreshold
	}
	return out
}

// Truncate limits snippets to the first maxShow entries in input order
// unless expanded, reporting how many were hidden so a caller can offer an
// expand affordance. No reordering or ranking is performed
func Truncate(snippets []Snippet, maxShow int, expanded bool) ([]Snippet, int) {
	if expanded || maxShow < 0 || len(snippets) <= maxShow {
		return snippets, 0
	}
	return snippets[:maxShow], len(snippets) - maxShow
}
