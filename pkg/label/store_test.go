// ABOUTME: Tests for label storage and document assignments
// ABOUTME: Verifies CRUD, assignment directions, and delete cascades

package label

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.db")
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

func TestCreateAndGetLabel(t *testing.T) {
	store := setupTestStore(t)

	l := &Label{ID: "l1", Name: "Invoices", Color: "#ff9800"}
	if err := store.Create(l); err != nil {
		t.Fatalf("Failed to create label: %v", err)
	}
	if l.CreatedAt.IsZero() {
		t.Error("Create should stamp CreatedAt")
	}

	got, err := store.Get("l1")
	if err != nil {
		t.Fatalf("Failed to get label: %v", err)
	}
	if got.Name != "Invoices" || got.Color != "#ff9800" {
		t.Errorf("Retrieved label differs: %+v", got)
	}

	if err := store.Create(&Label{ID: "l2"}); err == nil {
		t.Error("Expected error for label without name")
	}
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListLabels(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := store.Create(&Label{ID: name, Name: name}); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	labels, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(labels) != 3 {
		t.Errorf("Expected 3 labels, got %d", len(labels))
	}
}

func TestAssignments(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Create(&Label{ID: "l1", Name: "Receipts"}); err != nil {
		t.Fatalf("Failed to create label: %v", err)
	}
	if err := store.Assign("l1", "doc1"); err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}
	if err := store.Assign("l1", "doc2"); err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}
	// Re-assignment is a no-op
	if err := store.Assign("l1", "doc1"); err != nil {
		t.Fatalf("Re-assign failed: %v", err)
	}
	if err := store.Assign("missing", "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing label, got %v", err)
	}

	docs, err := store.DocumentsForLabel("l1")
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents, got %v", docs)
	}

	labels, err := store.LabelsForDocument("doc1")
	if err != nil {
		t.Fatalf("Failed to list labels: %v", err)
	}
	if len(labels) != 1 || labels[0].Name != "Receipts" {
		t.Errorf("Expected [Receipts], got %v", labels)
	}

	if err := store.Unassign("l1", "doc1"); err != nil {
		t.Fatalf("Failed to unassign: %v", err)
	}
	labels, _ = store.LabelsForDocument("doc1")
	if len(labels) != 0 {
		t.Errorf("Expected no labels after unassign, got %v", labels)
	}
}

func TestDeleteCascadesAssignments(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Create(&Label{ID: "l1", Name: "Scans"}); err != nil {
		t.Fatalf("Failed to create label: %v", err)
	}
	for _, doc := range []string{"doc1", "doc2", "doc3"} {
		if err := store.Assign("l1", doc); err != nil {
			t.Fatalf("Failed to assign %s: %v", doc, err)
		}
	}

	if err := store.Delete("l1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.Get("l1"); !errors.Is(err, ErrNotFound) {
		t.Error("Label still present after delete")
	}
	for _, doc := range []string{"doc1", "doc2", "doc3"} {
		labels, err := store.LabelsForDocument(doc)
		if err != nil {
			t.Fatalf("Failed to list labels for %s: %v", doc, err)
		}
		if len(labels) != 0 {
			t.Errorf("Dangling assignment for %s: %v", doc, labels)
		}
	}
}
