package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/motorchat/datastore/internal/core/domain/embedding"
)

// Store implements ports.VectorStore on postgres with the pgvector extension.
// Collections live in the collection table; their vectors live in
// collection_embedding keyed by (collection_id, record_id). Queries order by
// cosine distance.
type Store struct {
	db *sqlx.DB
}

// New creates a Store over an open connection pool. The schema must already
// be in place (see migrations/).
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type collectionRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Metadata  []byte    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *collectionRow) toDomain() (*embedding.Collection, error) {
	c := &embedding.Collection{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode collection metadata: %w", err)
		}
	}
	return c, nil
}

// CreateCollection implements VectorStore.CreateCollection. Creating a name
// that already exists returns the existing collection unchanged.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name must not be empty")
	}
	if len(metadata) == 0 {
		metadata = embedding.DefaultMetadata(name)
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection metadata: %w", err)
	}

	var row collectionRow
	err = s.db.GetContext(ctx, &row, `
		INSERT INTO collection (id, name, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET updated_at = collection.updated_at
		RETURNING id, name, metadata, created_at, updated_at
	`, uuid.New(), name, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return row.toDomain()
}

// GetCollection implements VectorStore.GetCollection.
func (s *Store) GetCollection(ctx context.Context, name string) (*embedding.Collection, error) {
	var row collectionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, metadata, created_at, updated_at
		FROM collection
		WHERE name = $1
	`, name)
	if err == sql.ErrNoRows {
		return nil, embedding.ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}
	return row.toDomain()
}

// GetOrCreateCollection implements VectorStore.GetOrCreateCollection.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string, metadata map[string]string) (*embedding.Collection, error) {
	c, err := s.GetCollection(ctx, name)
	if err == nil {
		return c, nil
	}
	if err != embedding.ErrCollectionNotFound {
		return nil, err
	}
	return s.CreateCollection(ctx, name, metadata)
}

// AddEmbeddings implements VectorStore.AddEmbeddings. Records are upserted
// one statement each inside a transaction so a bad record aborts the batch.
func (s *Store) AddEmbeddings(ctx context.Context, collectionName string, records []embedding.Record) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return err
		}
	}

	c, err := s.GetCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO collection_embedding (collection_id, record_id, embedding, metadata, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection_id, record_id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			document = EXCLUDED.document,
			updated_at = now()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		meta := rec.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		encoded, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for record %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, rec.ID, pgvector.NewVector(rec.Vector), encoded, rec.Document); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit embeddings: %w", err)
	}
	return nil
}

// QueryEmbeddings implements VectorStore.QueryEmbeddings.
func (s *Store) QueryEmbeddings(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) ([]embedding.QueryResult, error) {
	if limit <= 0 {
		limit = 5
	}

	c, err := s.GetCollection(ctx, collectionName)
	if err != nil {
		return nil, err
	}

	results := make([]embedding.QueryResult, 0, len(queryVectors))
	for _, qv := range queryVectors {
		if len(qv) == 0 {
			return nil, fmt.Errorf("query vector must not be empty")
		}
		matches, err := s.queryOne(ctx, c.ID, qv, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, embedding.QueryResult{Matches: matches})
	}
	return results, nil
}

func (s *Store) queryOne(ctx context.Context, collectionID uuid.UUID, vector []float32, limit int) ([]embedding.Match, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT record_id, embedding <=> $2 AS distance, metadata, document
		FROM collection_embedding
		WHERE collection_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`, collectionID, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	matches := []embedding.Match{}
	for rows.Next() {
		var (
			m        embedding.Match
			meta     []byte
			document sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Distance, &meta, &document); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode match metadata: %w", err)
			}
		}
		m.Document = document.String
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}

// DeleteCollection implements VectorStore.DeleteCollection. Embeddings go
// with it via ON DELETE CASCADE.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM collection WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return embedding.ErrCollectionNotFound
	}
	return nil
}
