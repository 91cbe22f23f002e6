// ABOUTME: Data model for search snippets and display configuration
// ABOUTME: Defines highlight ranges, segments, view modes, and options

package snippet

// Source identifies which document field a snippet was matched in
type Source string

const (
	SourceContent  Source = "content"
	SourceOCRText  Source = "ocr_text"
	SourceFilename Source = "filename"
)

// HighlightRange marks a substring to visually emphasize. Offsets are byte
// offsets into the snippet text, end-exclusive. Valid ranges satisfy
// 0 <= Start <= End <= len(text); out-of-bounds input is clamped rather
// than rejected
type HighlightRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Snippet is a unit of matched text plus metadata shown as a search result.
// A snippet is never mutated by the renderer; context windowing returns a
// new value
type Snippet struct {
	Text       string           `json:"text"`
	Ranges     []HighlightRange `json:"highlight_ranges"`
	Source     Source           `json:"source"`
	PageNumber *int             `json:"page_number,omitempty"`
	Confidence *float64         `json:"confidence,omitempty"` // OCR confidence in [0,1]
}

// SegmentKind distinguishes plain from highlighted runs
type SegmentKind string

const (
	SegmentPlain       SegmentKind = "plain"
	SegmentHighlighted SegmentKind = "highlighted"
)

// Segment is a contiguous run of either plain or highlighted text.
// Concatenating an emitted segment sequence in order reproduces the source
// text exactly
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// ViewMode selects the presentation policy
type ViewMode string

const (
	ViewCompact  ViewMode = "compact"
	ViewDetailed ViewMode = "detailed"
	ViewContext  ViewMode = "context"
)

// HighlightStyle selects the visual treatment of highlighted segments. It
// never affects segment boundaries
type HighlightStyle string

const (
	StyleBackground HighlightStyle = "background"
	StyleUnderline  HighlightStyle = "underline"
	StyleBold       HighlightStyle = "bold"
)

// Bounds and defaults for numeric display options
const (
	MinFontSize          = 12
	MaxFontSize          = 20
	DefaultFontSize      = 14
	MinContextLength     = 20
	MaxContextLength     = 200
	DefaultContextLength = 50
)

// Confidence badges are only shown below this value in detailed view
const confidenceBadgeThreshold = 0.8

// DisplayOptions configures rendering and windowing. Options affect
// presentation only, never the segment correctness invariants
type DisplayOptions struct {
	ViewMode       ViewMode       `json:"view_mode"`
	HighlightStyle HighlightStyle `json:"highlight_style"`
	FontSize       int            `json:"font_size"`
	ContextLength  int            `json:"context_length"`
}

// DefaultOptions returns the detailed view with default styling
func DefaultOptions() DisplayOptions {
	return DisplayOptions{
		ViewMode:       ViewDetailed,
		HighlightStyle: StyleBackground,
		FontSize:       DefaultFontSize,
		ContextLength:  DefaultContextLength,
	}
}

// Normalize fills zero-valued fields with defaults and clamps numeric
// options into their valid bounds
func (o DisplayOptions) Normalize() DisplayOptions {
	if o.ViewMode == "" {
		o.ViewMode = ViewDetailed
	}
	if o.HighlightStyle == "" {
		o.HighlightStyle = StyleBackground
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.FontSize < MinFontSize {
		o.FontSize = MinFontSize
	}
	if o.FontSize > MaxFontSize {
		o.FontSize = MaxFontSize
	}
	if o.ContextLength == 0 {
		o.ContextLength = DefaultContextLength
	}
	if o.ContextLength < MinContextLength {
		o.ContextLength = MinContextLength
	}
	if o.ContextLength > MaxContextLength {
		o.ContextLength = MaxContextLength
	}
	return o
}

// Rendered is the output of Render: ordered segments plus presentation
// hints for the rendering layer
type Rendered struct {
	Segments       []Segment      `json:"segments"`
	Snippet        Snippet        `json:"snippet"` // windowed in context mode
	Style          HighlightStyle `json:"style"`
	FontSize       int            `json:"font_size"`
	ShowMetadata   bool           `json:"show_metadata"`
	ShowConfidence bool           `json:"show_confidence"`
	Monospace      bool           `json:"monospace"`
}
