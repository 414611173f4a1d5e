// Package entity defines the domain models for the kline feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents one OHLCV observation for a symbol at a given bar-open
// instant. The 4-tuple (Market, Symbol, Timeframe, Time) is the natural key;
// no two persisted candles may share it.
type Candle struct {
	Market    string           // Exchange / asset-class identifier (e.g., "AShare")
	Symbol    string           // Stock code (e.g., "600519")
	Timeframe string           // Bar duration class, see timeframe.go
	Time      time.Time        // Bar open time
	Open      decimal.Decimal  // Opening price
	High      decimal.Decimal  // Highest price
	Low       decimal.Decimal  // Lowest price
	Close     decimal.Decimal  // Closing price
	Volume    *int64           // Traded volume, nil when the provider omitted it
	Amount    *decimal.Decimal // Traded notional, nil when the provider omitted it
}

// SymbolInfo is a provider-side symbol listing entry (search / hot results).
type SymbolInfo struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Market        string           `json:"market"`
	Price         *decimal.Decimal `json:"price"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
	Volume        *int64           `json:"volume"`
	Amount        *decimal.Decimal `json:"amount"`
}

// PriceQuote is a provider-side real-time quote for one symbol.
type PriceQuote struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Open          *decimal.Decimal `json:"open"`
	High          *decimal.Decimal `json:"high"`
	Low           *decimal.Decimal `json:"low"`
	PrevClose     *decimal.Decimal `json:"prevClose"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
	Volume        *int64           `json:"volume"`
	Amount        *decimal.Decimal `json:"amount"`
}
