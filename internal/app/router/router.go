// Package router assembles the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"

	"kline_backend/internal/feature/kline/transport/handler"
	jwtmw "kline_backend/internal/platform/jwt"
)

// NewRouter wires the public kline/market routes and the admin sync routes.
func NewRouter(kline *handler.KlineHandler, market *handler.MarketHandler, admin *handler.AdminHandler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", handler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/kline", kline.GetKline)
		v1.GET("/kline/price", kline.GetLatestPrice)

		v1.GET("/market/search", market.Search)
		v1.GET("/market/hot", market.Hot)
		v1.GET("/market/quote/:symbol", market.Quote)
		v1.POST("/market/quotes", market.BatchQuotes)
	}

	// Sync triggers mutate the durable record; admin token required.
	adm := v1.Group("/admin/kline")
	adm.Use(jwtmw.AdminRequired())
	{
		adm.POST("/sync/batch", admin.SyncBatch)
		adm.POST("/sync/:market/:symbol", admin.SyncSymbol)
		adm.POST("/backfill/:market/:symbol", admin.BackfillSymbol)
	}

	return r
}
