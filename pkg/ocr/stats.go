// ABOUTME: Collection-level OCR statistics
// ABOUTME: Aggregates confidence averages and status counts across documents

package ocr

import "github.com/nainya/docsearch/pkg/document"

// Documents below this confidence are counted as low-confidence results
const lowConfidenceThreshold = 0.8

// CollectionStats summarizes OCR processing across a set of documents
type CollectionStats struct {
	Total             int     `json:"total_documents"`
	Completed         int     `json:"completed"`
	Failed            int     `json:"failed"`
	Pending           int     `json:"pending"`
	Processing        int     `json:"processing"`
	AverageConfidence float64 `json:"average_confidence"` // over completed documents carrying a confidence
	LowConfidence     int     `json:"low_confidence"`     // completed documents below 0.8
	TotalWords        int     `json:"total_words"`
}

// Stats aggregates OCR metadata across documents. Documents with no OCR
// status are counted as pending; the confidence average skips documents
// that completed without a recorded confidence
func Stats(docs []*document.Document) CollectionStats {
	var stats CollectionStats
	stats.Total = len(docs)

	confSum := 0.0
	confCount := 0
	for _, doc := range docs {
		switch doc.OCR.Status {
		case document.OCRCompleted:
			stats.Completed++
			if doc.OCR.Confidence != nil {
				confSum += *doc.OCR.Confidence
				confCount++
				if *doc.OCR.Confidence < lowConfidenceThreshold {
					stats.LowConfidence++
				}
			}
			if doc.OCR.WordCount != nil {
				stats.TotalWords += *doc.OCR.WordCount
			}
		case document.OCRFailed:
			stats.Failed++
		case document.OCRProcessing:
			stats.Processing++
		default:
			stats.Pending++
		}
	}
	if confCount > 0 {
		stats.AverageConfidence = confSum / float64(confCount)
	}
	return stats
}
