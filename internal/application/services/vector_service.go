package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	config "github.com/motorchat/datastore/configs"
	"github.com/motorchat/datastore/internal/core/domain/embedding"
	"github.com/motorchat/datastore/internal/core/ports"
	infraDB "github.com/motorchat/datastore/internal/infrastructure/db"
	"github.com/motorchat/datastore/internal/infrastructure/vectorstore"
)

// VectorService is the loose facade over the vector store: nil/false
// sentinels instead of errors, disabled mode when unconfigured, construction
// that never fails. Like the cache facade it holds its connection for the
// life of the process and never reconnects.
type VectorService struct {
	store        ports.VectorStore
	logger       *logrus.Logger
	defaultLimit int

	sf singleflight.Group
	db *infraDB.Database // owned when built from config, nil otherwise
}

// NewVectorService wraps an existing store. A nil store yields a disabled
// service.
func NewVectorService(store ports.VectorStore, defaultLimit int, logger *logrus.Logger) *VectorService {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &VectorService{store: store, defaultLimit: defaultLimit, logger: logger}
}

// NewVectorServiceFromConfig connects to the vector database per config. An
// unset VECTOR_DB_URL or an unreachable database logs and yields a disabled
// service; the caller is never failed.
func NewVectorServiceFromConfig(cfg *config.VectorConfig, logger *logrus.Logger) *VectorService {
	svc := NewVectorService(nil, cfg.DefaultQueryLimit, logger)

	if cfg.DSN == "" {
		logger.Warn("VECTOR_DB_URL is not set, the vector store is disabled")
		return svc
	}

	database, err := infraDB.New(cfg.DSN)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to the vector database, the vector store is disabled")
		return svc
	}

	logger.Info("Connected to the vector database successfully")
	svc.store = vectorstore.New(database.DB)
	svc.db = database
	return svc
}

// Enabled reports whether a store is attached.
func (s *VectorService) Enabled() bool { return s.store != nil }

// Close releases the owned database connection, if any.
func (s *VectorService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateCollection creates (or returns the existing) collection, nil on
// disabled store or error.
func (s *VectorService) CreateCollection(ctx context.Context, name string, metadata map[string]string) *embedding.Collection {
	if s.store == nil {
		s.logger.Error("Vector store is not initialized")
		return nil
	}

	c, err := s.store.CreateCollection(ctx, name, metadata)
	if err != nil {
		s.logger.WithError(err).WithField("collection", name).Error("Failed to create collection")
		return nil
	}
	return c
}

// GetOrCreateCollection returns the named collection, creating it if needed.
// Concurrent calls for the same name are coalesced so only one create hits
// the database.
func (s *VectorService) GetOrCreateCollection(ctx context.Context, name string, metadata map[string]string) *embedding.Collection {
	if s.store == nil {
		return nil
	}

	res, err, _ := s.sf.Do("collection:"+name, func() (any, error) {
		return s.store.GetOrCreateCollection(ctx, name, metadata)
	})
	if err != nil {
		s.logger.WithError(err).WithField("collection", name).Error("Failed to get or create collection")
		return nil
	}
	c, ok := res.(*embedding.Collection)
	if !ok {
		s.logger.WithField("collection", name).Error(fmt.Sprintf("Unexpected singleflight result type %T", res))
		return nil
	}
	return c
}

// AddEmbeddings upserts records into the named collection.
func (s *VectorService) AddEmbeddings(ctx context.Context, collectionName string, records []embedding.Record) bool {
	if s.store == nil {
		return false
	}

	if err := s.store.AddEmbeddings(ctx, collectionName, records); err != nil {
		s.logger.WithError(err).WithField("collection", collectionName).Error("Failed to add embeddings")
		return false
	}
	return true
}

// QueryEmbeddings returns the nearest records for each query vector, nil on
// disabled store or error. A non-positive limit uses the configured default.
func (s *VectorService) QueryEmbeddings(ctx context.Context, collectionName string, queryVectors [][]float32, limit int) []embedding.QueryResult {
	if s.store == nil {
		return nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	results, err := s.store.QueryEmbeddings(ctx, collectionName, queryVectors, limit)
	if err != nil {
		s.logger.WithError(err).WithField("collection", collectionName).Error("Failed to query embeddings")
		return nil
	}
	return results
}

// DeleteCollection removes the collection and its records. Deleting a
// collection that does not exist returns false, same as any other failure.
func (s *VectorService) DeleteCollection(ctx context.Context, name string) bool {
	if s.store == nil {
		return false
	}

	if err := s.store.DeleteCollection(ctx, name); err != nil {
		s.logger.WithError(err).WithField("collection", name).Error("Failed to delete collection")
		return false
	}
	return true
}
