// ABOUTME: Persistent document store backed by bbolt
// ABOUTME: JSON-encoded documents in a single bucket with filtered listing

package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketDocuments = []byte("documents")

// ErrNotFound is returned when a document ID has no entry
var ErrNotFound = errors.New("document not found")

// Store persists documents in a bbolt database. The database may be shared
// with other stores; Store only touches its own bucket
type Store struct {
	db *bbolt.DB
}

// NewStore creates a document store on an open database, creating the
// bucket if needed
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create documents bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores or replaces a document. CreatedAt is stamped on first write,
// UpdatedAt on every write
func (s *Store) Put(doc *Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
}

// Get retrieves a document by ID
func (s *Store) Get(id string) (*Document, error) {
	var doc Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document by ID
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return b.Delete([]byte(id))
	})
}

// List returns all documents passing the filter, in key order
func (s *Store) List(filter Filter) ([]*Document, error) {
	var docs []*Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decode document %s: %w", k, err)
			}
			if filter.Matches(&doc) {
				docs = append(docs, &doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the total number of stored documents
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return count, err
}

// UpdateOCR attaches recognized text and OCR metadata to a document
func (s *Store) UpdateOCR(id string, text string, meta OCRMetadata) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode document %s: %w", id, err)
		}
		doc.OCRText = text
		doc.OCR = meta
		doc.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", id, err)
		}
		return b.Put([]byte(id), out)
	})
}
