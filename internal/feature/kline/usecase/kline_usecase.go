// Package usecase implements the business logic of the kline feature:
// query routing for reads and sync orchestration for writes. Both share the
// store and cache but run independently.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"kline_backend/internal/feature/kline/cache"
	"kline_backend/internal/feature/kline/domain/entity"
)

const (
	// DefaultLimit is the range-query page size when the caller gives none.
	DefaultLimit = 300
	// MaxLimit caps one range-query page.
	MaxLimit = 1000
)

// ErrInvalidTimeframe rejects timeframes outside the supported set.
var ErrInvalidTimeframe = errors.New("kline: invalid timeframe")

// CandleReader abstracts the read side of the durable store.
// Following Go convention: interfaces are defined by the consumer (usecase),
// not the provider (adapters).
type CandleReader interface {
	FindRange(ctx context.Context, market, symbol, timeframe string, limit int, before *time.Time) ([]entity.Candle, error)
	LatestClose(ctx context.Context, market, symbol, timeframe string) (*entity.Candle, error)
}

// MarketDataClient abstracts the upstream provider.
type MarketDataClient interface {
	FetchCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error)
}

// Cache abstracts the tiered cache. Reads populate it lazily; the sync path
// only ever invalidates.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Put(ctx context.Context, key string, v any, class cache.Class)
	Invalidate(ctx context.Context, prefix string)
}

// KlineUsecase routes candle reads: minute timeframes go straight to the
// provider (live, never persisted), daily and coarser go through the cache
// to the durable store.
type KlineUsecase struct {
	store  CandleReader
	market MarketDataClient
	cache  Cache
}

// NewKlineUsecase creates the read-path usecase.
func NewKlineUsecase(store CandleReader, market MarketDataClient, c Cache) *KlineUsecase {
	return &KlineUsecase{store: store, market: market, cache: c}
}

// GetCandles returns up to limit candles descending by bar time. beforeTime
// (epoch seconds) is the strictly-older pagination cursor. Provider failures
// on the live path degrade to an empty result; store failures propagate.
func (u *KlineUsecase) GetCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error) {
	if timeframe == "" {
		timeframe = entity.TimeframeDaily
	}
	if !entity.IsValidTimeframe(timeframe) {
		return nil, ErrInvalidTimeframe
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if entity.IsMinuteTimeframe(timeframe) {
		return u.liveCandles(ctx, market, symbol, timeframe, limit, beforeTime)
	}

	key := cache.KlineKey(market, symbol, timeframe, limit, beforeTime)
	var cached []entity.Candle
	if u.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var before *time.Time
	if beforeTime != nil {
		t := time.Unix(*beforeTime, 0).UTC()
		before = &t
	}
	cs, err := u.store.FindRange(ctx, market, symbol, timeframe, limit, before)
	if err != nil {
		return nil, err
	}
	u.cache.Put(ctx, key, cs, cache.ClassKline)
	return cs, nil
}

// liveCandles serves minute bars from the provider. They are too voluminous
// and volatile to persist at this tier, so there is no cache and no store.
func (u *KlineUsecase) liveCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error) {
	cs, err := u.market.FetchCandles(ctx, market, symbol, timeframe, limit, beforeTime)
	if err != nil {
		// Stale-but-available beats a hard failure for market-data reads.
		slog.Warn("live fetch failed, serving empty result", "symbol", symbol, "timeframe", timeframe, "error", err)
		return []entity.Candle{}, nil
	}
	out := make([]entity.Candle, 0, len(cs))
	for _, c := range cs {
		// Re-apply the cursor in case the upstream ignored it.
		if beforeTime != nil && c.Time.Unix() >= *beforeTime {
			continue
		}
		c.Market = market
		c.Symbol = symbol
		c.Timeframe = timeframe
		out = append(out, c)
	}
	return out, nil
}

// GetLatestPrice returns the most recent persisted close for a non-minute
// timeframe, cache-tiered at the short price TTL. Nil means no data.
func (u *KlineUsecase) GetLatestPrice(ctx context.Context, market, symbol, timeframe string) (*decimal.Decimal, error) {
	if timeframe == "" {
		timeframe = entity.TimeframeDaily
	}
	if !entity.IsValidTimeframe(timeframe) || entity.IsMinuteTimeframe(timeframe) {
		return nil, ErrInvalidTimeframe
	}

	key := cache.PriceKey(market, symbol, timeframe)
	var cached decimal.Decimal
	if u.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	c, err := u.store.LatestClose(ctx, market, symbol, timeframe)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	u.cache.Put(ctx, key, c.Close, cache.ClassPrice)
	price := c.Close
	return &price, nil
}
