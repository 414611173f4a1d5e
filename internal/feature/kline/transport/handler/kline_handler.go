// Package handler provides the HTTP handlers of the kline feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kline_backend/internal/api"
	"kline_backend/internal/feature/kline/domain/entity"
	"kline_backend/internal/feature/kline/transport/http/dto"
	"kline_backend/internal/feature/kline/usecase"
)

// KlineUsecase is the read-path contract this handler consumes.
// Following Go convention: interfaces are defined by the consumer (handler),
// not the provider (usecase).
type KlineUsecase interface {
	GetCandles(ctx context.Context, market, symbol, timeframe string, limit int, beforeTime *int64) ([]entity.Candle, error)
	GetLatestPrice(ctx context.Context, market, symbol, timeframe string) (*decimal.Decimal, error)
}

// KlineHandler serves candle range queries and latest-price lookups.
type KlineHandler struct {
	uc KlineUsecase
}

// NewKlineHandler creates a KlineHandler over the given usecase.
func NewKlineHandler(uc KlineUsecase) *KlineHandler {
	return &KlineHandler{uc: uc}
}

// GetKline handles
//
//	GET /api/v1/kline?market=AShare&symbol=600519&timeframe=1D&limit=300&beforeTime=...
func (h *KlineHandler) GetKline(c *gin.Context) {
	market := c.Query("market")
	symbol := c.Query("symbol")
	if market == "" || symbol == "" {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "market and symbol are required"))
		return
	}
	timeframe := c.DefaultQuery("timeframe", entity.TimeframeDaily)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "300"))

	var beforeTime *int64
	if v := c.Query("beforeTime"); v != "" {
		t, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "beforeTime must be a unix timestamp"))
			return
		}
		beforeTime = &t
	}

	cs, err := h.uc.GetCandles(c.Request.Context(), market, symbol, timeframe, limit, beforeTime)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Success(dto.FromCandles(cs)))
}

// GetLatestPrice handles
//
//	GET /api/v1/kline/price?market=AShare&symbol=600519&timeframe=1D
func (h *KlineHandler) GetLatestPrice(c *gin.Context) {
	market := c.Query("market")
	symbol := c.Query("symbol")
	if market == "" || symbol == "" {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "market and symbol are required"))
		return
	}
	timeframe := c.DefaultQuery("timeframe", entity.TimeframeDaily)

	price, err := h.uc.GetLatestPrice(c.Request.Context(), market, symbol, timeframe)
	if err != nil {
		h.fail(c, err)
		return
	}
	if price == nil {
		c.JSON(http.StatusNotFound, api.Error(http.StatusNotFound, "No price data found"))
		return
	}
	c.JSON(http.StatusOK, api.Success(dto.LatestPriceResponse{Symbol: symbol, Price: *price}))
}

// fail maps usecase errors onto the envelope. Bad input is the caller's
// fault; anything else is a store-level problem and surfaces as 500.
func (h *KlineHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrInvalidTimeframe) {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, err.Error()))
		return
	}
	slog.Error("kline read failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, api.Error(http.StatusInternalServerError, "internal error"))
}
