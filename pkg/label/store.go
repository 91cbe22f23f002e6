// ABOUTME: Label store implementation with document assignments
// ABOUTME: Labels and both assignment directions kept in bbolt buckets

package label

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketLabels    = []byte("labels")
	bucketLabelDocs = []byte("label_docs") // labelID -> docID set
	bucketDocLabels = []byte("doc_labels") // docID -> labelID set
)

// Keys in the assignment buckets are "<owner>\x00<member>". IDs never
// contain NUL, so the join is unambiguous
const keySep = "\x00"

// ErrNotFound is returned when a label ID has no entry
var ErrNotFound = errors.New("label not found")

// Store manages labels and their document assignments
type Store struct {
	db *bbolt.DB
}

// NewStore creates a label store on an open database, creating its buckets
// if needed
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLabels, bucketLabelDocs, bucketDocLabels} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create label buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func assignmentKey(owner, member string) []byte {
	return []byte(owner + keySep + member)
}

// Create stores a new label. CreatedAt is stamped if unset
func (s *Store) Create(l *Label) error {
	if l.ID == "" || l.Name == "" {
		return fmt.Errorf("label ID and name are required")
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode label %s: %w", l.ID, err)
		}
		return tx.Bucket(bucketLabels).Put([]byte(l.ID), data)
	})
}

// Get retrieves a label by ID
func (s *Store) Get(id string) (*Label, error) {
	var l Label
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLabels).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &l)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns all labels in key order
func (s *Store) List() ([]*Label, error) {
	var labels []*Label
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLabels).ForEach(func(k, v []byte) error {
			var l Label
			if err := json.Unmarshal(v, &l); err != nil {
				return fmt.Errorf("decode label %s: %w", k, err)
			}
			labels = append(labels, &l)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// Delete removes a label and all of its assignments
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		labels := tx.Bucket(bucketLabels)
		if labels.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := labels.Delete([]byte(id)); err != nil {
			return err
		}

		// Cascade both assignment directions
		labelDocs := tx.Bucket(bucketLabelDocs)
		docLabels := tx.Bucket(bucketDocLabels)
		prefix := []byte(id + keySep)
		c := labelDocs.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			docID := string(k[len(prefix):])
			if err := docLabels.Delete(assignmentKey(docID, id)); err != nil {
				return err
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Assign links a label to a document. Assigning twice is a no-op
func (s *Store) Assign(labelID, docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLabels).Get([]byte(labelID)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, labelID)
		}
		if err := tx.Bucket(bucketLabelDocs).Put(assignmentKey(labelID, docID), []byte{}); err != nil {
			return err
		}
		return tx.Bucket(bucketDocLabels).Put(assignmentKey(docID, labelID), []byte{})
	})
}

// Unassign removes the link between a label and a document
func (s *Store) Unassign(labelID, docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketLabelDocs).Delete(assignmentKey(labelID, docID)); err != nil {
			return err
		}
		return tx.Bucket(bucketDocLabels).Delete(assignmentKey(docID, labelID))
	})
}

// LabelsForDocument returns all labels assigned to a document
func (s *Store) LabelsForDocument(docID string) ([]*Label, error) {
	var labels []*Label
	err := s.db.View(func(tx *bbolt.Tx) error {
		labelBucket := tx.Bucket(bucketLabels)
		prefix := []byte(docID + keySep)
		c := tx.Bucket(bucketDocLabels).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			labelID := k[len(prefix):]
			data := labelBucket.Get(labelID)
			if data == nil {
				continue // dangling assignment
			}
			var l Label
			if err := json.Unmarshal(data, &l); err != nil {
				return fmt.Errorf("decode label %s: %w", labelID, err)
			}
			labels = append(labels, &l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// DocumentsForLabel returns the IDs of all documents carrying a label
func (s *Store) DocumentsForLabel(labelID string) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLabels).Get([]byte(labelID)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, labelID)
		}
		prefix := []byte(labelID + keySep)
		c := tx.Bucket(bucketLabelDocs).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

