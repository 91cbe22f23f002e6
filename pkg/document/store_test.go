// ABOUTME: Tests for the bbolt-backed document store
// ABOUTME: Verifies CRUD, filtered listing, and OCR metadata updates

package document

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsearch.db")
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestPutAndGetDocument(t *testing.T) {
	store := setupTestStore(t)

	doc := &Document{
		ID:               "doc1",
		Filename:         "report.pdf",
		OriginalFilename: "Q3 Report.pdf",
		MimeType:         "application/pdf",
		FileSize:         42000,
		Content:          "quarterly revenue grew by twelve percent",
		Tags:             []string{"finance", "quarterly"},
	}
	if err := store.Put(doc); err != nil {
		t.Fatalf("Failed to store document: %v", err)
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("Put should stamp timestamps")
	}

	got, err := store.Get("doc1")
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Filename != "report.pdf" || got.Content != doc.Content {
		t.Errorf("Retrieved document differs: %+v", got)
	}
	if !got.HasTag("finance") || got.HasTag("missing") {
		t.Error("Tag lookup broken")
	}
}

func TestGetMissingDocument(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPutRequiresID(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put(&Document{Filename: "x.txt"}); err == nil {
		t.Error("Expected error for document without ID")
	}
}

func TestDeleteDocument(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put(&Document{ID: "doc1", Filename: "a.txt"}); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if err := store.Delete("doc1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.Get("doc1"); !errors.Is(err, ErrNotFound) {
		t.Error("Document still present after delete")
	}
	if err := store.Delete("doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListWithFilters(t *testing.T) {
	store := setupTestStore(t)

	docs := []*Document{
		{ID: "a", Filename: "a.pdf", MimeType: "application/pdf", Tags: []string{"finance"}},
		{ID: "b", Filename: "b.png", MimeType: "image/png", Tags: []string{"scan", "finance"}},
		{ID: "c", Filename: "c.txt", MimeType: "text/plain", Tags: []string{"notes"}},
	}
	for _, doc := range docs {
		if err := store.Put(doc); err != nil {
			t.Fatalf("Failed to store %s: %v", doc.ID, err)
		}
	}

	all, err := store.List(Filter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 documents, got %d", len(all))
	}

	pdfs, err := store.List(Filter{MimeTypes: []string{"application/pdf"}})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(pdfs) != 1 || pdfs[0].ID != "a" {
		t.Errorf("MIME filter broken: %v", pdfs)
	}

	finance, err := store.List(Filter{Tags: []string{"finance"}})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(finance) != 2 {
		t.Errorf("Tag filter broken: got %d documents", len(finance))
	}

	count, err := store.Count()
	if err != nil || count != 3 {
		t.Errorf("Expected count 3, got %d (%v)", count, err)
	}
}

func TestUpdateOCR(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put(&Document{ID: "scan1", Filename: "scan.png", MimeType: "image/png"}); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	conf := 0.91
	words := 120
	elapsed := int64(850)
	meta := OCRMetadata{
		Confidence:       &conf,
		WordCount:        &words,
		ProcessingTimeMS: &elapsed,
		Status:           OCRCompleted,
	}
	if err := store.UpdateOCR("scan1", "recognized page text", meta); err != nil {
		t.Fatalf("Failed to update OCR: %v", err)
	}

	got, err := store.Get("scan1")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if !got.HasOCRText() || got.OCRText != "recognized page text" {
		t.Errorf("OCR text not stored: %+v", got)
	}
	if got.OCR.Status != OCRCompleted || got.OCR.Confidence == nil || *got.OCR.Confidence != 0.91 {
		t.Errorf("OCR metadata not stored: %+v", got.OCR)
	}

	if err := store.UpdateOCR("missing", "x", meta); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
