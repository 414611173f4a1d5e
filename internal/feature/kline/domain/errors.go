// Package domain holds errors shared across the kline feature layers.
package domain

import (
	"errors"
	"fmt"
)

// ErrConflict signals an insert that violated the (market, symbol, timeframe,
// time) uniqueness invariant. Sync pre-filters duplicates, so hitting this
// means a concurrent sync lost the insert race; the store row that won is
// authoritative.
var ErrConflict = errors.New("kline: duplicate candle")

// StorageError wraps a durable-store failure. It is propagated, never masked
// as an empty result, because it indicates a system problem rather than data
// unavailability.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("kline store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
