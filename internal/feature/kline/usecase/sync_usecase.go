package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"kline_backend/internal/feature/kline/cache"
	"kline_backend/internal/feature/kline/domain"
	"kline_backend/internal/feature/kline/domain/entity"
	"kline_backend/internal/shared/ratelimiter"
)

const (
	// syncFetchLimit is one full provider page.
	syncFetchLimit = 1000

	// asyncSyncTimeout bounds one detached sync job.
	asyncSyncTimeout = 2 * time.Minute

	defaultInterCallDelay = time.Second
	defaultMaxConcurrent  = 4
)

// CandleWriter abstracts the write side of the durable store.
type CandleWriter interface {
	Exists(ctx context.Context, market, symbol, timeframe string, t time.Time) (bool, error)
	InsertMany(ctx context.Context, candles []entity.Candle) error
}

// SyncResult is the per-symbol outcome of one sync attempt. It feeds logging
// only; a symbol's failure never aborts its siblings.
type SyncResult struct {
	Symbol   string
	Inserted int
	Err      error
}

// SyncUsecase is the write path: fetch from the provider, dedup against the
// store's natural key, persist, invalidate the cache. Three producers share
// it: the market-close schedule, on-demand single syncs and admin batches.
type SyncUsecase struct {
	market  MarketDataClient
	store   CandleWriter
	cache   Cache
	limiter ratelimiter.RateLimiterInterface
	sem     *semaphore.Weighted
	delay   time.Duration
}

// NewSyncUsecase creates the sync orchestrator. maxConcurrent bounds the
// detached worker pool; non-positive values use the defaults.
func NewSyncUsecase(market MarketDataClient, store CandleWriter, c Cache, limiter ratelimiter.RateLimiterInterface, delay time.Duration, maxConcurrent int) *SyncUsecase {
	if delay <= 0 {
		delay = defaultInterCallDelay
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &SyncUsecase{
		market:  market,
		store:   store,
		cache:   c,
		limiter: limiter,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		delay:   delay,
	}
}

// SyncOne fetches the most recent page for one (market, symbol, timeframe),
// inserts the candles not yet persisted and invalidates the cache for the
// key. Invalidation runs even on a zero-insert run; it is an idempotent
// no-op. A fetch failure aborts this symbol only.
func (s *SyncUsecase) SyncOne(ctx context.Context, market, symbol, timeframe string) SyncResult {
	cs, err := s.market.FetchCandles(ctx, market, symbol, timeframe, syncFetchLimit, nil)
	if err != nil {
		slog.Error("sync fetch failed", "market", market, "symbol", symbol, "timeframe", timeframe, "error", err)
		return SyncResult{Symbol: symbol, Err: err}
	}

	inserted, err := s.persistNew(ctx, market, symbol, timeframe, cs)
	s.invalidate(ctx, market, symbol, timeframe)
	if err != nil {
		return SyncResult{Symbol: symbol, Inserted: inserted, Err: err}
	}
	if inserted > 0 {
		slog.Info("synced kline records", "market", market, "symbol", symbol, "timeframe", timeframe, "inserted", inserted)
	}
	return SyncResult{Symbol: symbol, Inserted: inserted}
}

// persistNew inserts the candles whose natural key is not yet stored. The
// unique index remains the final arbiter: a concurrent sync that wins the
// race surfaces here as domain.ErrConflict.
func (s *SyncUsecase) persistNew(ctx context.Context, market, symbol, timeframe string, cs []entity.Candle) (int, error) {
	fresh := make([]entity.Candle, 0, len(cs))
	for _, c := range cs {
		c.Market = market
		c.Symbol = symbol
		c.Timeframe = timeframe

		exists, err := s.store.Exists(ctx, market, symbol, timeframe, c.Time)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.store.InsertMany(ctx, fresh); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			slog.Warn("concurrent sync won the insert race", "market", market, "symbol", symbol, "timeframe", timeframe)
		}
		return 0, err
	}
	return len(fresh), nil
}

func (s *SyncUsecase) invalidate(ctx context.Context, market, symbol, timeframe string) {
	s.cache.Invalidate(ctx, cache.KlinePrefix(market, symbol, timeframe))
	s.cache.Invalidate(ctx, cache.PriceKey(market, symbol, timeframe))
}

// SyncOneAsync runs SyncOne on a detached goroutine and returns immediately.
// The weighted semaphore bounds how many detached jobs run at once.
func (s *SyncUsecase) SyncOneAsync(market, symbol, timeframe string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSyncTimeout)
		defer cancel()

		if err := s.sem.Acquire(ctx, 1); err != nil {
			slog.Error("async sync queue full", "symbol", symbol, "error", err)
			return
		}
		defer s.sem.Release(1)

		s.limiter.WaitIfNeeded()
		s.SyncOne(ctx, market, symbol, timeframe)
	}()
}

// SyncBatch syncs the symbols sequentially with the inter-call delay the
// provider's rate limit demands. One symbol's failure is logged and the loop
// continues. Cancellation is observed between symbols; the partial count is
// a valid outcome, not an error.
func (s *SyncUsecase) SyncBatch(ctx context.Context, market string, symbols []string, timeframe string) (int, error) {
	total := 0
	for i, symbol := range symbols {
		if i > 0 {
			if err := sleepCtx(ctx, s.delay); err != nil {
				slog.Info("batch sync cancelled", "done", i, "of", len(symbols))
				return total, err
			}
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}

		s.limiter.WaitIfNeeded()
		res := s.SyncOne(ctx, market, symbol, timeframe)
		if res.Err != nil {
			continue // already logged; fault isolation
		}
		total += res.Inserted
	}
	return total, nil
}

// Backfill pages backwards through history until the requested day horizon
// is covered, cursoring each page at the oldest bar of the previous one. An
// empty page or a cursor that stops moving ends the loop; a non-positive day
// count degrades to a single max-limit page.
func (s *SyncUsecase) Backfill(ctx context.Context, market, symbol, timeframe string, days int) (int, error) {
	horizon := time.Now().UTC().AddDate(0, 0, -days)
	total := 0
	var before *int64

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		s.limiter.WaitIfNeeded()

		cs, err := s.market.FetchCandles(ctx, market, symbol, timeframe, syncFetchLimit, before)
		if err != nil {
			slog.Error("backfill fetch failed", "symbol", symbol, "timeframe", timeframe, "error", err)
			if total == 0 {
				return 0, err
			}
			break // keep the pages already persisted
		}
		if len(cs) == 0 {
			break
		}

		inserted, err := s.persistNew(ctx, market, symbol, timeframe, cs)
		if err != nil {
			s.invalidate(ctx, market, symbol, timeframe)
			return total, err
		}
		total += inserted

		oldest := cs[0].Time
		for _, c := range cs[1:] {
			if c.Time.Before(oldest) {
				oldest = c.Time
			}
		}
		if days <= 0 || !oldest.After(horizon) {
			break
		}
		cursor := oldest.Unix()
		if before != nil && cursor >= *before {
			break // no progress, upstream has nothing older
		}
		before = &cursor
	}

	s.invalidate(ctx, market, symbol, timeframe)
	slog.Info("backfill finished", "market", market, "symbol", symbol, "timeframe", timeframe, "days", days, "inserted", total)
	return total, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
