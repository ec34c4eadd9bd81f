package embedding

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCollectionNotFound is returned when a named collection does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// Collection groups embeddings under a name with free-form string metadata.
type Collection struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	Name      string            `json:"name" db:"name"`
	Metadata  map[string]string `json:"metadata" db:"-"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Record is a single embedding to store: a caller-chosen ID, the vector, and
// optional metadata and source document text.
type Record struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Document string         `json:"document,omitempty"`
}

// Validate checks that a record can be stored.
func (r *Record) Validate() error {
	if r.ID == "" {
		return errors.New("record ID must not be empty")
	}
	if len(r.Vector) == 0 {
		return fmt.Errorf("record %s has an empty vector", r.ID)
	}
	return nil
}

// Match is a single query hit with its cosine distance from the query vector.
type Match struct {
	ID       string         `json:"id"`
	Distance float64        `json:"distance"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Document string         `json:"document,omitempty"`
}

// QueryResult holds the matches for one query vector, nearest first.
type QueryResult struct {
	Matches []Match `json:"matches"`
}

// DefaultMetadata fills the metadata a collection gets when the caller
// provides none.
func DefaultMetadata(name string) map[string]string {
	return map[string]string{"description": fmt.Sprintf("Collection %s", name)}
}
