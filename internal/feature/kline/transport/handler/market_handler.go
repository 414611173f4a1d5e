package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kline_backend/internal/api"
	"kline_backend/internal/feature/kline/domain/entity"
)

// MarketDataClient is the provider contract the live-quote surface consumes.
type MarketDataClient interface {
	SearchSymbols(ctx context.Context, keyword string, limit int) ([]entity.SymbolInfo, error)
	HotSymbols(ctx context.Context, limit int) ([]entity.SymbolInfo, error)
	GetPrice(ctx context.Context, symbol string) (*entity.PriceQuote, error)
	BatchPrices(ctx context.Context, symbols []string) ([]entity.PriceQuote, error)
}

// MarketHandler serves symbol search and live quotes straight from the
// provider. Provider failures degrade to empty payloads, never to a 5xx.
type MarketHandler struct {
	market MarketDataClient
}

// NewMarketHandler creates a MarketHandler over the given client.
func NewMarketHandler(market MarketDataClient) *MarketHandler {
	return &MarketHandler{market: market}
}

// Search handles GET /api/v1/market/search?keyword=...&limit=20
func (h *MarketHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "keyword is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.market.SearchSymbols(c.Request.Context(), keyword, limit)
	if err != nil {
		slog.Warn("symbol search failed", "keyword", keyword, "error", err)
		results = []entity.SymbolInfo{}
	}
	c.JSON(http.StatusOK, api.Success(results))
}

// Hot handles GET /api/v1/market/hot?limit=20
func (h *MarketHandler) Hot(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.market.HotSymbols(c.Request.Context(), limit)
	if err != nil {
		slog.Warn("hot symbols fetch failed", "error", err)
		results = []entity.SymbolInfo{}
	}
	c.JSON(http.StatusOK, api.Success(results))
}

// Quote handles GET /api/v1/market/quote/:symbol
func (h *MarketHandler) Quote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := h.market.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		slog.Warn("quote fetch failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusOK, api.Success(nil))
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, api.Error(http.StatusNotFound, "symbol not found"))
		return
	}
	c.JSON(http.StatusOK, api.Success(quote))
}

// BatchQuotes handles POST /api/v1/market/quotes with body {"symbols":[...]}
func (h *MarketHandler) BatchQuotes(c *gin.Context) {
	var req struct {
		Symbols []string `json:"symbols" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(http.StatusBadRequest, "symbols is required"))
		return
	}

	quotes, err := h.market.BatchPrices(c.Request.Context(), req.Symbols)
	if err != nil {
		slog.Warn("batch quotes fetch failed", "symbols", len(req.Symbols), "error", err)
		quotes = []entity.PriceQuote{}
	}
	c.JSON(http.StatusOK, api.Success(quotes))
}
