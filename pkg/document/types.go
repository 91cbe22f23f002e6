// ABOUTME: Document data model for the search service
// ABOUTME: Defines Document with OCR metadata and processing status

package document

import "time"

// OCRStatus tracks where a document is in the OCR pipeline
type OCRStatus string

const (
	OCRPending    OCRStatus = "pending"
	OCRProcessing OCRStatus = "processing"
	OCRCompleted  OCRStatus = "completed"
	OCRFailed     OCRStatus = "failed"
)

// OCRMetadata carries per-document OCR results
type OCRMetadata struct {
	Confidence       *float64  `json:"confidence,omitempty"` // mean word confidence in [0,1]
	WordCount        *int      `json:"word_count,omitempty"`
	ProcessingTimeMS *int64    `json:"processing_time_ms,omitempty"`
	Status           OCRStatus `json:"status,omitempty"`
}

// Document represents a stored document with its extracted text
type Document struct {
	ID               string      `json:"id"`
	Filename         string      `json:"filename"`
	OriginalFilename string      `json:"original_filename"`
	MimeType         string      `json:"mime_type"`
	FileSize         int64       `json:"file_size"`
	Content          string      `json:"content,omitempty"`  // text extracted at upload
	OCRText          string      `json:"ocr_text,omitempty"` // text recognized from images
	Tags             []string    `json:"tags"`
	OCR              OCRMetadata `json:"ocr"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// HasOCRText reports whether OCR text has been extracted
func (d *Document) HasOCRText() bool {
	return d.OCRText != ""
}

// HasTag reports whether the document carries the given tag
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Filter narrows List results. Empty fields match everything; non-empty
// Tags and MimeTypes match documents carrying any of the listed values
type Filter struct {
	Tags      []string
	MimeTypes []string
}

// Matches reports whether the document passes the filter
func (f Filter) Matches(d *Document) bool {
	if len(f.MimeTypes) > 0 {
		ok := false
		for _, mt := range f.MimeTypes {
			if d.MimeType == mt {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Tags) > 0 {
		ok := false
		for _, tag := range f.Tags {
			if d.HasTag(tag) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
