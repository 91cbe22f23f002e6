// ABOUTME: Tests for the Tesseract OCR engine adapter
// ABOUTME: Covers naming and context handling without a live tesseract

package tesseract

import (
	"context"
	"errors"
	"testing"

	"github.com/nainya/docsearch/pkg/ocr"
)

func TestName(t *testing.T) {
	if name := NewTesseractEngine().Name(); name != "tesseract" {
		t.Errorf("Expected provider name %q, got %q", "tesseract", name)
	}
}

func TestRecognizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := NewTesseractEngine()
	_, err := eng.Recognize(ctx, ocr.Input{ID: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
