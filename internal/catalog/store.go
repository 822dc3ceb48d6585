// Package catalog supplies the product catalog consumed by matching and
// pricing. The catalog is a read-only snapshot during a pipeline run.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
)

const cacheKey = "catalog:items"

// Store loads the full catalog snapshot.
type Store interface {
	List(ctx context.Context) ([]models.CatalogItem, error)
}

// ==========================
// 1. Postgres Store
// ==========================

// PostgresStore reads catalog items from the catalog_items table. Specs are
// stored as a JSONB column of string pairs.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "catalog"}),
	}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.CatalogItem, error) {
	query := `SELECT id, model_name, manufacturer, specs, unit_price, stock_qty, min_stock FROM catalog_items ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewCatalogUnavailableError(err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		var specs []byte
		if err := rows.Scan(&item.ID, &item.ModelName, &item.Manufacturer, &specs, &item.UnitPrice, &item.StockQty, &item.MinStock); err != nil {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		if len(specs) > 0 {
			if err := json.Unmarshal(specs, &item.Specs); err != nil {
				return nil, errors.NewCatalogUnavailableError(fmt.Errorf("specs for %s: %w", item.ID, err))
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogUnavailableError(err)
	}

	s.logger.Debug("catalog loaded from postgres", map[string]interface{}{
		"items": len(items),
	})
	return items, nil
}

// ==========================
// 2. Cached Store
// ==========================

// CachedStore is a read-through Redis cache in front of another store. Cache
// failures degrade to the inner store; they never fail a pipeline run.
type CachedStore struct {
	inner  Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (s *CachedStore) List(ctx context.Context) ([]models.CatalogItem, error) {
	if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		var items []models.CatalogItem
		if err := json.Unmarshal([]byte(val), &items); err == nil {
			return items, nil
		}
		// Poisoned entry; fall through to the inner store and overwrite.
		s.redis.Del(ctx, cacheKey)
	}

	items, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(items)
	if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return items, nil
}

// Invalidate drops the cached snapshot, forcing the next List through to the
// inner store.
func (s *CachedStore) Invalidate(ctx context.Context) error {
	return s.redis.Del(ctx, cacheKey).Err()
}
