// Package dto defines the response DTOs of the kline HTTP surface.
package dto

import (
	"github.com/shopspring/decimal"

	"kline_backend/internal/feature/kline/domain/entity"
)

// KlineResponse is one candle on the wire. Timestamp is the bar open time in
// epoch seconds.
type KlineResponse struct {
	Timestamp int64            `json:"timestamp"`
	Open      decimal.Decimal  `json:"open"`
	High      decimal.Decimal  `json:"high"`
	Low       decimal.Decimal  `json:"low"`
	Close     decimal.Decimal  `json:"close"`
	Volume    *int64           `json:"volume"`
	Amount    *decimal.Decimal `json:"amount"`
}

// FromCandles converts domain candles to wire shape, preserving order.
func FromCandles(cs []entity.Candle) []KlineResponse {
	out := make([]KlineResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, KlineResponse{
			Timestamp: c.Time.Unix(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
			Amount:    c.Amount,
		})
	}
	return out
}

// LatestPriceResponse is the latest-price payload.
type LatestPriceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// SyncTriggeredResponse acknowledges an accepted sync job.
type SyncTriggeredResponse struct {
	Message string `json:"message"`
}

// SyncCountResponse reports how many records a batch or backfill inserted.
type SyncCountResponse struct {
	Symbols  int `json:"symbols,omitempty"`
	Inserted int `json:"inserted"`
}
