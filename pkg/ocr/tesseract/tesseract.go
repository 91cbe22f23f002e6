// ABOUTME: Tesseract-backed OCR engine using the gosseract client
// ABOUTME: Lives in its own package so the cgo dependency is opt-in

package tesseract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/nainya/docsearch/pkg/ocr"
)

// TesseractEngine implements ocr.Engine using the gosseract client
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

var _ ocr.Engine = (*TesseractEngine)(nil)

// NewTesseractEngine constructs a Tesseract-backed OCR engine
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

// Name returns the provider name
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. A fresh client is used
// per call; gosseract clients are not safe for concurrent use
func (e *TesseractEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}

	start := time.Now()
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	elapsed := time.Since(start)

	plain := strings.TrimSpace(text)
	wordCount, meanConf := wordStats(c, plain)

	return ocr.Result{
		Text:           plain,
		MeanConfidence: meanConf,
		WordCount:      wordCount,
		Duration:       elapsed,
	}, nil
}

// wordStats averages per-word confidences from the recognizer. Tesseract
// reports confidences on a 0-100 scale; they are normalized to [0,1].
// When bounding boxes are unavailable the word count falls back to a
// whitespace split and confidence to zero
func wordStats(c *gosseract.Client, plain string) (int, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return len(strings.Fields(plain)), 0
	}
	sum := 0.0
	for _, box := range boxes {
		sum += box.Confidence
	}
	return len(boxes), sum / float64(len(boxes)) / 100.0
}
