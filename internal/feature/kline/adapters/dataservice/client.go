package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"kline_backend/internal/feature/kline/adapters/dataservice/dto"
	"kline_backend/internal/feature/kline/domain/entity"
)

// FetchError marks a recoverable provider failure: transport error, timeout,
// non-success envelope code or malformed payload. Read paths degrade to empty
// results on it; sync paths isolate it per symbol.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dataservice %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

const (
	// MaxFetchLimit is the provider-safe upper bound on one page.
	MaxFetchLimit = 1000

	aShareBasePath = "/a-share"
)

// Client talks to the data-service HTTP API. All methods are pure reads and
// never return an error other than *FetchError; a disabled client returns
// empty results instead of erroring.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a data-service client. The http.Client should come from
// platform/http.NewHTTPClient so connect and read timeouts are bounded.
func NewClient(cfg Config, client *http.Client) *Client {
	if !cfg.Enabled {
		slog.Warn("data service is disabled; provider calls return empty results")
	}
	return &Client{cfg: cfg, client: client}
}

// Enabled reports whether provider calls are live.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

func (c *Client) basePath(market string) (string, error) {
	switch market {
	case "", "AShare":
		return aShareBasePath, nil
	default:
		return "", &FetchError{Op: "route", Err: fmt.Errorf("unsupported market %q", market)}
	}
}

// FetchCandles fetches up to limit recent candles for one symbol/timeframe.
// beforeTime (epoch seconds) pages into older history when set.
func (c *Client) FetchCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error) {
	if !c.cfg.Enabled {
		return []entity.Candle{}, nil
	}
	if symbol == "" || timeframe == "" {
		return nil, &FetchError{Op: "kline", Err: fmt.Errorf("symbol and timeframe are required")}
	}
	base, err := c.basePath(market)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxFetchLimit {
		limit = MaxFetchLimit
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", timeframe)
	q.Set("limit", strconv.Itoa(limit))
	if beforeTime != nil {
		q.Set("before_time", strconv.FormatInt(*beforeTime, 10))
	}

	raw, _, err := c.get(ctx, "kline", base+"/kline?"+q.Encode())
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords("kline", raw)
	if err != nil {
		return nil, err
	}
	candles := make([]entity.Candle, 0, len(records))
	for _, rec := range records {
		cd, ok := mapCandle(rec)
		if !ok {
			slog.Warn("dropping kline record with unparseable required field", "symbol", symbol, "timeframe", timeframe)
			continue
		}
		candles = append(candles, cd)
	}
	return candles, nil
}

// SearchSymbols searches the provider's listing by code or name keyword.
func (c *Client) SearchSymbols(ctx context.Context, keyword string, limit int) ([]entity.SymbolInfo, error) {
	if !c.cfg.Enabled {
		return []entity.SymbolInfo{}, nil
	}
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("limit", strconv.Itoa(limit))

	raw, _, err := c.get(ctx, "search", aShareBasePath+"/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return mapSymbolList("search", raw)
}

// HotSymbols returns the provider's most actively traded symbols.
func (c *Client) HotSymbols(ctx context.Context, limit int) ([]entity.SymbolInfo, error) {
	if !c.cfg.Enabled {
		return []entity.SymbolInfo{}, nil
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	raw, _, err := c.get(ctx, "hot", aShareBasePath+"/hot?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return mapSymbolList("hot", raw)
}

// GetPrice returns the live quote for one symbol, or nil when the provider
// does not know the symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (*entity.PriceQuote, error) {
	if !c.cfg.Enabled {
		return nil, nil
	}
	raw, status, err := c.get(ctx, "price", aShareBasePath+"/price/"+url.PathEscape(symbol))
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec, err := decodeRecord("price", raw)
	if err != nil {
		return nil, err
	}
	quote := mapQuote(rec)
	return &quote, nil
}

// BatchPrices returns live quotes for the given symbols. Unknown symbols are
// simply absent from the result.
func (c *Client) BatchPrices(ctx context.Context, symbols []string) ([]entity.PriceQuote, error) {
	if !c.cfg.Enabled || len(symbols) == 0 {
		return []entity.PriceQuote{}, nil
	}
	body, err := json.Marshal(dto.BatchPriceRequest{Symbols: symbols})
	if err != nil {
		return nil, &FetchError{Op: "batch price", Err: err}
	}

	raw, _, err := c.post(ctx, "batch price", aShareBasePath+"/price/batch", body)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords("batch price", raw)
	if err != nil {
		return nil, err
	}
	quotes := make([]entity.PriceQuote, 0, len(records))
	for _, rec := range records {
		quotes = append(quotes, mapQuote(rec))
	}
	return quotes, nil
}

// ---- transport ----

func (c *Client) get(ctx context.Context, op, path string) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, 0, &FetchError{Op: op, Err: err}
	}
	return c.do(op, req)
}

func (c *Client) post(ctx context.Context, op, path string, body []byte) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

// do executes one single-attempt request and unwraps the response envelope.
// Timeouts come from the injected http.Client.
func (c *Client) do(op string, req *http.Request) (json.RawMessage, int, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Op: op, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, res.StatusCode, &FetchError{Op: op, Err: fmt.Errorf("http %d", res.StatusCode)}
	}

	var env dto.Envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, res.StatusCode, &FetchError{Op: op, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Code != dto.EnvelopeCodeOK {
		return nil, res.StatusCode, &FetchError{Op: op, Err: fmt.Errorf("provider code %d: %s", env.Code, env.Message)}
	}
	return env.Data, res.StatusCode, nil
}

// ---- loose field coercion ----

// decodeRecords decodes a data array with UseNumber so numeric precision
// survives until the decimal parse.
func decodeRecords(op string, raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return records, nil
}

func decodeRecord(op string, raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("empty data")}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return rec, nil
}

// mapCandle coerces one loose record into a Candle. Timestamp and the four
// prices are required; an unparseable required field drops the record.
// Volume and amount stay nil when missing or unparseable.
func mapCandle(rec map[string]any) (entity.Candle, bool) {
	ts, ok := coerceInt64(rec["timestamp"])
	if !ok {
		return entity.Candle{}, false
	}
	open, ok := coerceDecimal(rec["open"])
	if !ok {
		return entity.Candle{}, false
	}
	high, ok := coerceDecimal(rec["high"])
	if !ok {
		return entity.Candle{}, false
	}
	low, ok := coerceDecimal(rec["low"])
	if !ok {
		return entity.Candle{}, false
	}
	cls, ok := coerceDecimal(rec["close"])
	if !ok {
		return entity.Candle{}, false
	}
	return entity.Candle{
		Time:   time.Unix(ts, 0).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: optInt64(rec, "volume"),
		Amount: optDecimal(rec, "amount"),
	}, true
}

func mapSymbolList(op string, raw json.RawMessage) ([]entity.SymbolInfo, error) {
	records, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SymbolInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, entity.SymbolInfo{
			Symbol:        coerceString(rec["symbol"]),
			Name:          coerceString(rec["name"]),
			Market:        coerceString(rec["market"]),
			Price:         optDecimal(rec, "price"),
			ChangePercent: optDecimal(rec, "change_percent"),
			Volume:        optInt64(rec, "volume"),
			Amount:        optDecimal(rec, "amount"),
		})
	}
	return out, nil
}

func mapQuote(rec map[string]any) entity.PriceQuote {
	return entity.PriceQuote{
		Symbol:        coerceString(rec["symbol"]),
		Name:          coerceString(rec["name"]),
		Price:         optDecimal(rec, "price"),
		Open:          optDecimal(rec, "open"),
		High:          optDecimal(rec, "high"),
		Low:           optDecimal(rec, "low"),
		PrevClose:     optDecimal(rec, "prev_close"),
		Change:        optDecimal(rec, "change"),
		ChangePercent: optDecimal(rec, "change_percent"),
		Volume:        optInt64(rec, "volume"),
		Amount:        optDecimal(rec, "amount"),
	}
}

// coerceDecimal accepts native JSON numbers and numeric strings.
func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	default:
		return decimal.Decimal{}, false
	}
}

func coerceInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		// Providers occasionally send integral values as floats.
		if f, err := x.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func coerceString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func optDecimal(rec map[string]any, key string) *decimal.Decimal {
	v, present := rec[key]
	if !present || v == nil {
		return nil
	}
	d, ok := coerceDecimal(v)
	if !ok {
		slog.Debug("unparseable numeric field", "field", key, "value", v)
		return nil
	}
	return &d
}

func optInt64(rec map[string]any, key string) *int64 {
	v, present := rec[key]
	if !present || v == nil {
		return nil
	}
	n, ok := coerceInt64(v)
	if !ok {
		slog.Debug("unparseable integer field", "field", key, "value", v)
		return nil
	}
	return &n
}
