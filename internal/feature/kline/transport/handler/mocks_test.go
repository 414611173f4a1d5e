package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kline_backend/internal/api"
	"kline_backend/internal/feature/kline/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errBoom = errors.New("boom")

type mockKlineUsecase struct {
	GetCandlesFunc     func(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error)
	GetLatestPriceFunc func(ctx context.Context, market, symbol, timeframe string) (*decimal.Decimal, error)
}

func (m *mockKlineUsecase) GetCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error) {
	if m.GetCandlesFunc != nil {
		return m.GetCandlesFunc(ctx, market, symbol, timeframe, limit, beforeTime)
	}
	return []entity.Candle{}, nil
}

func (m *mockKlineUsecase) GetLatestPrice(ctx context.Context, market, symbol, timeframe string) (*decimal.Decimal, error) {
	if m.GetLatestPriceFunc != nil {
		return m.GetLatestPriceFunc(ctx, market, symbol, timeframe)
	}
	return nil, nil
}

type mockSyncUsecase struct {
	SyncOneAsyncFunc func(market, symbol, timeframe string)
	SyncBatchFunc    func(ctx context.Context, market string, symbols []string, timeframe string) (int, error)
	BackfillFunc     func(ctx context.Context, market, symbol, timeframe string, days int) (int, error)
}

func (m *mockSyncUsecase) SyncOneAsync(market, symbol, timeframe string) {
	if m.SyncOneAsyncFunc != nil {
		m.SyncOneAsyncFunc(market, symbol, timeframe)
	}
}

func (m *mockSyncUsecase) SyncBatch(ctx context.Context, market string, symbols []string, timeframe string) (int, error) {
	if m.SyncBatchFunc != nil {
		return m.SyncBatchFunc(ctx, market, symbols, timeframe)
	}
	return 0, nil
}

func (m *mockSyncUsecase) Backfill(ctx context.Context, market, symbol, timeframe string, days int) (int, error) {
	if m.BackfillFunc != nil {
		return m.BackfillFunc(ctx, market, symbol, timeframe, days)
	}
	return 0, nil
}

type mockMarketClient struct {
	SearchSymbolsFunc func(ctx context.Context, keyword string, limit int) ([]entity.SymbolInfo, error)
	HotSymbolsFunc    func(ctx context.Context, limit int) ([]entity.SymbolInfo, error)
	GetPriceFunc      func(ctx context.Context, symbol string) (*entity.PriceQuote, error)
	BatchPricesFunc   func(ctx context.Context, symbols []string) ([]entity.PriceQuote, error)
}

func (m *mockMarketClient) SearchSymbols(ctx context.Context, keyword string, limit int) ([]entity.SymbolInfo, error) {
	if m.SearchSymbolsFunc != nil {
		return m.SearchSymbolsFunc(ctx, keyword, limit)
	}
	return []entity.SymbolInfo{}, nil
}

func (m *mockMarketClient) HotSymbols(ctx context.Context, limit int) ([]entity.SymbolInfo, error) {
	if m.HotSymbolsFunc != nil {
		return m.HotSymbolsFunc(ctx, limit)
	}
	return []entity.SymbolInfo{}, nil
}

func (m *mockMarketClient) GetPrice(ctx context.Context, symbol string) (*entity.PriceQuote, error) {
	if m.GetPriceFunc != nil {
		return m.GetPriceFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketClient) BatchPrices(ctx context.Context, symbols []string) ([]entity.PriceQuote, error) {
	if m.BatchPricesFunc != nil {
		return m.BatchPricesFunc(ctx, symbols)
	}
	return []entity.PriceQuote{}, nil
}

// perform routes one request through a fresh gin engine and decodes the
// envelope.
func perform(t *testing.T, register func(*gin.Engine), req *http.Request) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()
	r := gin.New()
	register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}
