package ports

import (
	"context"

	"github.com/motorchat/datastore/internal/core/domain/embedding"
)

// VectorStore defines the contract for a collection-oriented embedding store.
// Errors are real errors here; the loose facade in application/services maps
// them to the nil/false sentinels callers of the original API expect.
type VectorStore interface {
	// CreateCollection creates a collection. If one with the same name already
	// exists it is returned unchanged.
	CreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error)
	// GetCollection returns the named collection or embedding.ErrCollectionNotFound.
	GetCollection(ctx context.Context, name string) (*embedding.Collection, error)
	// GetOrCreateCollection returns the named collection, creating it if needed.
	GetOrCreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error)
	// AddEmbeddings upserts vectors into the named collection. ids, vectors,
	// and the optional metadatas/documents slices must have equal lengths.
	AddEmbeddings(ctx context.Context, collectionName string, records []embedding.Record) error
	// QueryEmbeddings returns the limit nearest records for each query vector,
	// ordered by ascending cosine distance.
	QueryEmbeddings(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) ([]embedding.QueryResult, error)
	// DeleteCollection removes the collection and all of its records.
	DeleteCollection(ctx context.Context, name string) error
}
