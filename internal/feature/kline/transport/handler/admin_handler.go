package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kline_backend/internal/api"
	"kline_backend/internal/feature/kline/domain/entity"
	"kline_backend/internal/feature/kline/transport/http/dto"
)

// SyncUsecase is the sync-orchestration contract the admin surface consumes.
type SyncUsecase interface {
	SyncOneAsync(market, symbol, timeframe string)
	SyncBatch(ctx context.Context, market string, symbols []string, timeframe string) (int, error)
	Backfill(ctx context.Context, market, symbol, timeframe string, days int) (int, error)
}

// AdminHandler exposes the manual sync, backfill and batch-sync triggers.
// The router mounts it behind the admin JWT middleware.
type AdminHandler struct {
	sync SyncUsecase
}

// NewAdminHandler creates an AdminHandler over the given sync usecase.
func NewAdminHandler(sync SyncUsecase) *AdminHandler {
	return &AdminHandler{sync: sync}
}

// SyncSymbol handles
//
//	POST /api/v1/admin/kline/sync/:market/:symbol?timeframe=1D
//
// The job runs asynchronously; the response only acknowledges the trigger.
func (h *AdminHandler) SyncSymbol(c *gin.Context) {
	market := c.Param("market")
	symbol := c.Param("symbol")
	timeframe := c.DefaultQuery("timeframe", entity.TimeframeDaily)

	slog.Info("manual sync triggered", "market", market, "symbol", symbol, "timeframe", timeframe)
	h.sync.SyncOneAsync(market, symbol, timeframe)

	c.JSON(http.StatusOK, api.Success(dto.SyncTriggeredResponse{
		Message: fmt.Sprintf("Sync triggered for %s", symbol),
	}))
}

// BackfillSymbol handles
//
//	POST /api/v1/admin/kline/backfill/:market/:symbol?timeframe=1D&days=365
//
// Backfill pages through history synchronously and reports the insert count.
func (h *AdminHandler) BackfillSymbol(c *gin.Context) {
	market := c.Param("market")
	symbol := c.Param("symbol")
	timeframe := c.DefaultQuery("timeframe", entity.TimeframeDaily)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "365"))

	slog.Info("backfill triggered", "market", market, "symbol", symbol, "timeframe", timeframe, "days", days)

	inserted, err := h.sync.Backfill(c.Request.Context(), market, symbol, timeframe, days)
	if err != nil {
		slog.Error("backfill failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, api.Error(http.StatusInternalServerError, "backfill failed"))
		return
	}
	c.JSON(http.StatusOK, api.Success(dto.SyncCountResponse{Inserted: inserted}))
}

// SyncBatch handles
//
//	POST /api/v1/admin/kline/sync/batch?symbols=600519,000001&market=AShare&timeframe=1D
//
// The aggregate insert count is the only per-batch report; individual symbol
// failures are logged, not returned.
func (h *AdminHandler) SyncBatch(c *gin.Context) {
	symbols := splitSymbols(c.QueryArray("symbols"))
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "symbols is required"))
		return
	}
	market := c.DefaultQuery("market", "AShare")
	timeframe := c.DefaultQuery("timeframe", entity.TimeframeDaily)

	slog.Info("batch sync triggered", "market", market, "symbols", len(symbols), "timeframe", timeframe)

	inserted, err := h.sync.SyncBatch(c.Request.Context(), market, symbols, timeframe)
	if err != nil {
		// Cancellation mid-batch still produced a valid partial result.
		slog.Warn("batch sync ended early", "inserted", inserted, "error", err)
	}
	c.JSON(http.StatusOK, api.Success(dto.SyncCountResponse{Symbols: len(symbols), Inserted: inserted}))
}

// splitSymbols accepts both repeated symbols params and one comma-separated
// value.
func splitSymbols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
