package services

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/motorchat/datastore/configs"
	"github.com/motorchat/datastore/internal/core/ports"
	"github.com/motorchat/datastore/internal/infrastructure/metrics"
	infraRedis "github.com/motorchat/datastore/internal/infrastructure/redis"
)

// CacheService is the loose cache facade: JSON values, collapsed sentinels,
// and no raised errors. Every operation returns its failure value when the
// backend is disabled, the key is missing, or the backend errors — callers
// cannot tell these apart and must not depend on hits for correctness.
//
// The backend connection is fixed for the life of the process: a service that
// comes up disabled stays disabled, and a connection lost later is not
// re-established. Recovery means restarting the process.
type CacheService struct {
	backend ports.Cache
	logger  *logrus.Logger
	metrics *metrics.CacheMetrics

	client *goredis.Client // owned when built from config, nil otherwise
}

// NewCacheService wraps an existing backend. A nil backend yields a disabled
// service whose operations all short-circuit to their failure sentinels.
func NewCacheService(backend ports.Cache, logger *logrus.Logger) *CacheService {
	return &CacheService{backend: backend, logger: logger}
}

// NewCacheServiceFromConfig connects to Redis per config and never fails the
// caller: an unset REDIS_URL or an unreachable backend logs and yields a
// disabled service.
func NewCacheServiceFromConfig(cfg *config.RedisConfig, logger *logrus.Logger) *CacheService {
	if cfg.URL == "" {
		logger.Warn("REDIS_URL is not set, caching is disabled")
		return &CacheService{logger: logger}
	}

	client, err := infraRedis.NewClient(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to Redis, caching is disabled")
		return &CacheService{logger: logger}
	}

	logger.Info("Connected to Redis successfully")
	return &CacheService{
		backend: infraRedis.NewCache(client, cfg.KeyPrefix),
		logger:  logger,
		client:  client,
	}
}

// WithMetrics attaches operation counters. Optional; the service works
// without them.
func (s *CacheService) WithMetrics(m *metrics.CacheMetrics) *CacheService {
	s.metrics = m
	return s
}

// Enabled reports whether a backend is attached.
func (s *CacheService) Enabled() bool { return s.backend != nil }

// Close releases the owned Redis connection, if any.
func (s *CacheService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Set stores a JSON-serializable value under key. A ttl of zero means no
// expiration. Returns false on empty key, serialization failure, disabled
// backend, or backend error.
func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if key == "" {
		s.logger.Warn("Refusing to cache an empty key")
		s.countError("set")
		return false
	}
	if s.backend == nil {
		s.countError("set")
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to serialize cache value")
		s.countError("set")
		return false
	}
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to set cache value")
		s.countError("set")
		return false
	}
	s.countHit("set")
	return true
}

// Get returns the deserialized value for key, or nil when the key is absent,
// the backend is disabled, or anything goes wrong. A stored JSON null is
// indistinguishable from absence.
func (s *CacheService) Get(ctx context.Context, key string) any {
	var value any
	if !s.GetJSON(ctx, key, &value) {
		return nil
	}
	return value
}

// GetJSON decodes the value for key into dest and reports whether dest was
// populated. It shares Get's collapsed miss/error semantics but lets callers
// decode into a concrete type.
func (s *CacheService) GetJSON(ctx context.Context, key string, dest any) bool {
	if s.backend == nil {
		s.countError("get")
		return false
	}

	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to get cache value")
		s.countError("get")
		return false
	}
	if !ok {
		s.countMiss("get")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to deserialize cache value")
		s.countError("get")
		return false
	}
	s.countHit("get")
	return true
}

// Delete removes key and returns true only if it existed. "Did not exist",
// "disabled", and "backend error" all return false.
func (s *CacheService) Delete(ctx context.Context, key string) bool {
	if s.backend == nil {
		s.countError("delete")
		return false
	}

	removed, err := s.backend.Delete(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to delete cache key")
		s.countError("delete")
		return false
	}
	if removed == 0 {
		s.countMiss("delete")
		return false
	}
	s.countHit("delete")
	return true
}

// Clear removes every entry in the cache's namespace.
func (s *CacheService) Clear(ctx context.Context) bool {
	if s.backend == nil {
		s.countError("clear")
		return false
	}

	if err := s.backend.Clear(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to clear cache")
		s.countError("clear")
		return false
	}
	s.countHit("clear")
	return true
}

func (s *CacheService) countHit(op string) {
	if s.metrics != nil {
		s.metrics.Hits.WithLabelValues(op).Inc()
	}
}

func (s *CacheService) countMiss(op string) {
	if s.metrics != nil {
		s.metrics.Misses.WithLabelValues(op).Inc()
	}
}

func (s *CacheService) countError(op string) {
	if s.metrics != nil {
		s.metrics.Errors.WithLabelValues(op).Inc()
	}
}
