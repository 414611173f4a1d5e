package main

import (
	"log"
	"os"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"kline_backend/internal/app/router"
	"kline_backend/internal/app/scheduler"
	"kline_backend/internal/feature/kline/adapters"
	"kline_backend/internal/feature/kline/adapters/dataservice"
	"kline_backend/internal/feature/kline/cache"
	"kline_backend/internal/feature/kline/transport/handler"
	"kline_backend/internal/feature/kline/usecase"
	"kline_backend/internal/platform/db"
	infrahttp "kline_backend/internal/platform/http"
	infraredis "kline_backend/internal/platform/redis"
	"kline_backend/internal/shared/ratelimiter"
)

func main() {
	// Prices go over the wire as JSON numbers, matching the provider.
	decimal.MarshalJSONWithoutQuotes = true

	// db
	gdb := db.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Provider client
	cfg := dataservice.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)
	client := dataservice.NewClient(cfg, httpClient)

	// Store and cache
	store := adapters.NewKlineRepository(gdb)
	cacheStore := cache.New(rdb, 0, 0)

	// Usecases
	limiter := ratelimiter.NewRateLimiter(30, time.Minute)
	klineUC := usecase.NewKlineUsecase(store, client, cacheStore)
	syncUC := usecase.NewSyncUsecase(client, store, cacheStore, limiter, time.Second, 4)

	// Handlers
	klineH := handler.NewKlineHandler(klineUC)
	marketH := handler.NewMarketHandler(client)
	adminH := handler.NewAdminHandler(syncUC)

	// Daily market-close sync
	sched := scheduler.New(syncUC, watchlistFromEnv())
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter(klineH, marketH, adminH)

	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Admin sync routes will reject all requests.")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// watchlistFromEnv reads the comma-separated SYNC_SYMBOLS override.
func watchlistFromEnv() []string {
	raw := os.Getenv("SYNC_SYMBOLS")
	if raw == "" {
		return nil
	}
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
