package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
)

// ==========================
// 1. Test Helpers
// ==========================

func sampleItems() []models.CatalogItem {
	return []models.CatalogItem{
		{
			ID:           "CAT-001",
			ModelName:    "TR-11K-100",
			Manufacturer: "Volta Industries",
			Specs:        map[string]string{"voltage": "11000", "cooling": "ONAN"},
			UnitPrice:    1000,
			StockQty:     20,
			MinStock:     5,
		},
		{
			ID:           "CAT-002",
			ModelName:    "TR-33K-250",
			Manufacturer: "Volta Industries",
			Specs:        map[string]string{"voltage": "33000", "cooling": "ONAF"},
			UnitPrice:    4500,
			StockQty:     2,
			MinStock:     2,
		},
	}
}

const listQuery = `SELECT id, model_name, manufacturer, specs, unit_price, stock_qty, min_stock FROM catalog_items ORDER BY id`

// ==========================
// 2. Postgres Store
// ==========================

func TestPostgresStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "model_name", "manufacturer", "specs", "unit_price", "stock_qty", "min_stock"}).
		AddRow("CAT-001", "TR-11K-100", "Volta Industries", []byte(`{"voltage":"11000","cooling":"ONAN"}`), 1000.0, 20, 5).
		AddRow("CAT-002", "TR-33K-250", "Volta Industries", []byte(`{"voltage":"33000"}`), 4500.0, 2, 2)
	mock.ExpectQuery("SELECT id, model_name").WillReturnRows(rows)

	store := NewPostgresStore(db, logger.NewTestLogger(t))
	items, err := store.List(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CAT-001", items[0].ID)
	assert.Equal(t, "11000", items[0].Specs["voltage"])
	assert.Equal(t, 20, items[0].StockQty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, model_name").WillReturnError(assert.AnError)

	store := NewPostgresStore(db, logger.NewTestLogger(t))
	_, err = store.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, errors.CodeOf(err))
}

func TestPostgresStore_List_MalformedSpecs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "model_name", "manufacturer", "specs", "unit_price", "stock_qty", "min_stock"}).
		AddRow("CAT-001", "TR-11K-100", "Volta Industries", []byte(`not json`), 1000.0, 20, 5)
	mock.ExpectQuery("SELECT id, model_name").WillReturnRows(rows)

	store := NewPostgresStore(db, logger.NewTestLogger(t))
	_, err = store.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, errors.CodeOf(err))
}

// ==========================
// 3. Cached Store
// ==========================

func TestCachedStore_CacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	items := sampleItems()
	data, _ := json.Marshal(items)
	mock.ExpectGet(cacheKey).SetVal(string(data))

	// The inner store must not be touched on a hit.
	store := NewCachedStore(failingStore{}, rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_CacheMissFillsCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	items := sampleItems()
	data, _ := json.Marshal(items)

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSet(cacheKey, data, time.Minute).SetVal("OK")

	store := NewCachedStore(NewMemoryStore(items), rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_CacheWriteFailureDegrades(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	items := sampleItems()
	data, _ := json.Marshal(items)

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSet(cacheKey, data, time.Minute).SetErr(assert.AnError)

	store := NewCachedStore(NewMemoryStore(items), rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.List(context.Background())

	require.NoError(t, err, "a cache write failure must not fail the load")
	assert.Equal(t, items, got)
}

func TestCachedStore_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel(cacheKey).SetVal(1)

	store := NewCachedStore(NewMemoryStore(nil), rdb, time.Minute, logger.NewTestLogger(t))
	require.NoError(t, store.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	items := sampleItems()
	counter := &countingStore{inner: NewMemoryStore(items)}
	store := NewCachedStore(counter, rdb, time.Minute, logger.NewTestLogger(t))

	// First load goes through, second is served from the cache.
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)

	got, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Equal(t, 1, counter.calls)

	// TTL expiry forces a reload.
	srv.FastForward(2 * time.Minute)
	_, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)

	// So does an explicit invalidation.
	require.NoError(t, store.Invalidate(context.Background()))
	_, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counter.calls)
}

func TestCachedStore_PoisonedEntryIsDropped(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	require.NoError(t, srv.Set(cacheKey, "not json"))

	items := sampleItems()
	store := NewCachedStore(NewMemoryStore(items), rdb, time.Minute, logger.NewTestLogger(t))

	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// The bad entry was overwritten with a good snapshot.
	val, err := srv.Get(cacheKey)
	require.NoError(t, err)
	var cached []models.CatalogItem
	require.NoError(t, json.Unmarshal([]byte(val), &cached))
	assert.Equal(t, items, cached)
}

// countingStore tracks how often the inner store is consulted.
type countingStore struct {
	inner Store
	calls int
}

func (s *countingStore) List(ctx context.Context) ([]models.CatalogItem, error) {
	s.calls++
	return s.inner.List(ctx)
}

// failingStore errors on every call; used to prove cache hits bypass it.
type failingStore struct{}

func (failingStore) List(context.Context) ([]models.CatalogItem, error) {
	return nil, errors.NewCatalogUnavailableError(assert.AnError)
}

// ==========================
// 4. Memory Store
// ==========================

func TestMemoryStore_ListCopies(t *testing.T) {
	store := NewMemoryStore(sampleItems())

	first, err := store.List(context.Background())
	require.NoError(t, err)

	first[0].StockQty = 0
	second, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, second[0].StockQty, "callers must not mutate the snapshot")
}
