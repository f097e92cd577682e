package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parcelia/backoffice/internal/platform/constants"
)

// catalogCacheTTL bounds staleness between an admin edit on one replica
// and reads on another. Mutations through this repository invalidate
// eagerly; the TTL covers out-of-band writes.
const catalogCacheTTL = 5 * time.Minute

// CachedRepository decorates a [Repository] with a Redis read-through
// cache on the hot path ([ListStatuses]), which every status validation
// hits.
//
// Cache failures are never fatal: a Redis outage degrades to plain
// database reads with a warning.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	logger *slog.Logger
}

// NewCachedRepository wraps a repository with the catalog cache.
func NewCachedRepository(inner Repository, client *redis.Client, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{inner: inner, client: client, logger: logger}
}

func (repository *CachedRepository) cacheKey(entityType string) string {
	return constants.RedisPrefixStatusCatalog + entityType
}

func (repository *CachedRepository) ListStatuses(ctx context.Context, entityType string) ([]*Status, error) {
	key := repository.cacheKey(entityType)

	if payload, err := repository.client.Get(ctx, key).Bytes(); err == nil {
		var statuses []*Status
		if err := json.Unmarshal(payload, &statuses); err == nil {
			return statuses, nil
		}
		// Corrupt entry: fall through to the database and rewrite it.
		repository.client.Del(ctx, key)
	}

	statuses, err := repository.inner.ListStatuses(ctx, entityType)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(statuses); err == nil {
		if err := repository.client.Set(ctx, key, payload, catalogCacheTTL).Err(); err != nil {
			repository.logger.Warn("status_cache_write_failed", slog.Any("error", err))
		}
	}

	return statuses, nil
}

func (repository *CachedRepository) GetStatus(ctx context.Context, id int) (*Status, error) {
	return repository.inner.GetStatus(ctx, id)
}

func (repository *CachedRepository) CreateStatus(ctx context.Context, s *Status) error {
	if err := repository.inner.CreateStatus(ctx, s); err != nil {
		return err
	}
	repository.invalidate(ctx, s.EntityType)
	return nil
}

func (repository *CachedRepository) UpdateStatus(ctx context.Context, s *Status) error {
	if err := repository.inner.UpdateStatus(ctx, s); err != nil {
		return err
	}
	repository.invalidate(ctx, s.EntityType)
	return nil
}

func (repository *CachedRepository) DeleteStatus(ctx context.Context, id int) error {
	// The entity type is needed for invalidation and the row is about to
	// disappear, so fetch it first.
	s, err := repository.inner.GetStatus(ctx, id)
	if err != nil {
		return err
	}

	if err := repository.inner.DeleteStatus(ctx, id); err != nil {
		return err
	}
	repository.invalidate(ctx, s.EntityType)
	return nil
}

func (repository *CachedRepository) invalidate(ctx context.Context, entityType string) {
	if err := repository.client.Del(ctx, repository.cacheKey(entityType)).Err(); err != nil {
		repository.logger.Warn("status_cache_invalidate_failed",
			slog.String("entity_type", entityType),
			slog.Any("error", err),
		)
	}
}
