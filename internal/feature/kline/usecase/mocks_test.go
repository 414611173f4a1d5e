package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kline_backend/internal/feature/kline/cache"
	"kline_backend/internal/feature/kline/domain/entity"
)

var (
	ErrMarketAPI = errors.New("market API error")
	ErrDB        = errors.New("database error")
)

// mockMarketDataClient is a func-field mock of the MarketDataClient interface.
type mockMarketDataClient struct {
	FetchCandlesFunc  func(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error)
	FetchCandlesCalls int
}

func (m *mockMarketDataClient) FetchCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error) {
	m.FetchCandlesCalls++
	if m.FetchCandlesFunc != nil {
		return m.FetchCandlesFunc(ctx, market, symbol, timeframe, limit, beforeTime)
	}
	return nil, errors.New("FetchCandlesFunc is not implemented")
}

// mockStore implements both CandleReader and CandleWriter.
type mockStore struct {
	FindRangeFunc   func(ctx context.Context, market, symbol, timeframe string, limit int, before *time.Time) ([]entity.Candle, error)
	LatestCloseFunc func(ctx context.Context, market, symbol, timeframe string) (*entity.Candle, error)
	ExistsFunc      func(ctx context.Context, market, symbol, timeframe string, t time.Time) (bool, error)
	InsertManyFunc  func(ctx context.Context, candles []entity.Candle) error

	InsertManyCalls int
}

func (m *mockStore) FindRange(ctx context.Context, market, symbol, timeframe string, limit int, before *time.Time) ([]entity.Candle, error) {
	if m.FindRangeFunc != nil {
		return m.FindRangeFunc(ctx, market, symbol, timeframe, limit, before)
	}
	return nil, nil
}

func (m *mockStore) LatestClose(ctx context.Context, market, symbol, timeframe string) (*entity.Candle, error) {
	if m.LatestCloseFunc != nil {
		return m.LatestCloseFunc(ctx, market, symbol, timeframe)
	}
	return nil, nil
}

func (m *mockStore) Exists(ctx context.Context, market, symbol, timeframe string, t time.Time) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, market, symbol, timeframe, t)
	}
	return false, nil
}

func (m *mockStore) InsertMany(ctx context.Context, candles []entity.Candle) error {
	m.InsertManyCalls++
	if m.InsertManyFunc != nil {
		return m.InsertManyFunc(ctx, candles)
	}
	return nil
}

// fakeCache is an in-memory Cache implementation recording invalidations.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]any
	classes     map[string]cache.Class
	invalidated []string
	putCalls    int
	disablePuts bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]any{}, classes: map[string]cache.Class{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, out any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return false
	}
	switch dst := out.(type) {
	case *[]entity.Candle:
		*dst = v.([]entity.Candle)
	case *decimal.Decimal:
		*dst = v.(decimal.Decimal)
	default:
		return false
	}
	return true
}

func (f *fakeCache) Put(ctx context.Context, key string, v any, class cache.Class) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.disablePuts {
		return
	}
	f.entries[key] = v
	f.classes[key] = class
}

func (f *fakeCache) Invalidate(ctx context.Context, prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, prefix)
	for k := range f.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.entries, k)
		}
	}
}

// mockRateLimiter counts WaitIfNeeded calls without waiting.
type mockRateLimiter struct {
	WaitIfNeededCalls int
}

func (m *mockRateLimiter) WaitIfNeeded() {
	m.WaitIfNeededCalls++
}
