// ABOUTME: Label data model for user-defined document categorization
// ABOUTME: Defines Label and its document assignment relationship

package label

import "time"

// Label is a user-defined category that can be assigned to documents
type Label struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"` // hex color for the UI chip
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Assignment links a label to a document
type Assignment struct {
	LabelID    string `json:"label_id"`
	DocumentID string `json:"document_id"`
}
