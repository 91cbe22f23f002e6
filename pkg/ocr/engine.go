// ABOUTME: OCR engine boundary and document processing glue
// ABOUTME: Recognized text and metadata are written back to the store

package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/nainya/docsearch/pkg/document"
)

// Input is a single image submitted for recognition
type Input struct {
	ID        string   // caller-provided identifier, echoed in logs
	Image     []byte   // encoded image payload (PNG, JPEG, TIFF)
	Languages []string // language hints for trained data selection (e.g. "eng", "deu")
}

// Result is the outcome of recognizing one input
type Result struct {
	Text           string
	MeanConfidence float64 // mean word confidence in [0,1]
	WordCount      int
	Duration       time.Duration
}

// Engine performs text recognition on images
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// Metadata converts a recognition result into document OCR metadata
func Metadata(res Result) document.OCRMetadata {
	conf := res.MeanConfidence
	words := res.WordCount
	elapsed := res.Duration.Milliseconds()
	return document.OCRMetadata{
		Confidence:       &conf,
		WordCount:        &words,
		ProcessingTimeMS: &elapsed,
		Status:           document.OCRCompleted,
	}
}

// Process runs the engine on an input and writes the recognized text and
// metadata back to the document. On recognition failure the document is
// marked failed and the error returned
func Process(ctx context.Context, eng Engine, store *document.Store, docID string, in Input) error {
	res, err := eng.Recognize(ctx, in)
	if err != nil {
		if updateErr := store.UpdateOCR(docID, "", document.OCRMetadata{Status: document.OCRFailed}); updateErr != nil {
			return fmt.Errorf("mark %s failed: %w (recognize: %v)", docID, updateErr, err)
		}
		return fmt.Errorf("recognize %s with %s: %w", docID, eng.Name(), err)
	}
	if err := store.UpdateOCR(docID, res.Text, Metadata(res)); err != nil {
		return fmt.Errorf("store OCR result for %s: %w", docID, err)
	}
	return nil
}
