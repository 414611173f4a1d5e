// Package cache provides the Redis-backed tiered-TTL cache for kline reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Class selects the TTL tier for a cached entry.
type Class int

const (
	// ClassKline covers range-query results. Historical bars change rarely,
	// so this tier lives minutes.
	ClassKline Class = iota
	// ClassPrice covers latest-price lookups. Prices move fast, so this tier
	// lives seconds.
	ClassPrice
)

const (
	defaultKlineTTL = time.Minute
	defaultPriceTTL = 30 * time.Second
)

// Store is the cache tier over Redis. A nil client disables caching: Get
// always misses, Put and Invalidate are no-ops, so callers fall through to
// the durable store.
type Store struct {
	rdb      *redis.Client
	klineTTL time.Duration
	priceTTL time.Duration
}

// New creates a Store. Non-positive TTLs fall back to the defaults
// (1 minute for kline entries, 30 seconds for price entries).
func New(rdb *redis.Client, klineTTL, priceTTL time.Duration) *Store {
	if klineTTL <= 0 {
		klineTTL = defaultKlineTTL
	}
	if priceTTL <= 0 {
		priceTTL = defaultPriceTTL
	}
	return &Store{rdb: rdb, klineTTL: klineTTL, priceTTL: priceTTL}
}

func (s *Store) ttl(class Class) time.Duration {
	if class == ClassPrice {
		return s.priceTTL
	}
	return s.klineTTL
}

// Get unmarshals the entry at key into out and reports a hit. A corrupted
// entry is dropped and treated as a miss.
func (s *Store) Get(ctx context.Context, key string, out any) bool {
	if s.rdb == nil {
		return false
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		_ = s.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// Put stores v at key under the class's TTL. Best effort: a cache write
// failure never fails the read that produced v.
func (s *Store) Put(ctx context.Context, key string, v any, class Class) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, b, s.ttl(class)).Err(); err != nil {
		slog.Warn("cache put failed", "key", key, "error", err)
	}
}

// Invalidate removes every entry whose key starts with prefix, the exact
// prefix key included. Failures are logged and swallowed; the entries
// self-expire anyway.
func (s *Store) Invalidate(ctx context.Context, prefix string) {
	if s.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, cur, err := s.rdb.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			slog.Warn("cache invalidate scan failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache invalidate del failed", "prefix", prefix, "error", err)
				return
			}
		}
		cursor = cur
		if cursor == 0 {
			return
		}
	}
}

// ---- key builders ----
//
// Keys are a total function of every query parameter, cursor included, so
// two reads with different cursors never collide.

// KlineKey is the cache key for one range query.
func KlineKey(market, symbol, timeframe string, limit int, beforeTime *int64) string {
	cursor := "-"
	if beforeTime != nil {
		cursor = fmt.Sprintf("%d", *beforeTime)
	}
	return fmt.Sprintf("kline:%s:%s:%s:%d:%s", safe(market), safe(symbol), safe(timeframe), limit, cursor)
}

// KlinePrefix covers every range-query entry for one (market, symbol,
// timeframe), whatever the limit and cursor.
func KlinePrefix(market, symbol, timeframe string) string {
	return fmt.Sprintf("kline:%s:%s:%s:", safe(market), safe(symbol), safe(timeframe))
}

// PriceKey is the cache key for one latest-price lookup.
func PriceKey(market, symbol, timeframe string) string {
	return fmt.Sprintf("price:%s:%s:%s", safe(market), safe(symbol), safe(timeframe))
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
