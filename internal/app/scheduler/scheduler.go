// Package scheduler runs the calendar-triggered kline sync.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"kline_backend/internal/feature/kline/domain/entity"
)

// DefaultWatchlist is the symbol set the daily job keeps current when
// SYNC_SYMBOLS is not configured.
var DefaultWatchlist = []string{
	"000001", // 平安银行
	"000002", // 万科A
	"000858", // 五粮液
	"002326", // 永太科技
	"600000", // 浦发银行
	"600519", // 贵州茅台
	"600036", // 招商银行
	"601318", // 中国平安
}

// dailySyncCron fires shortly after the A-share close, weekdays only.
const dailySyncCron = "5 15 * * 1-5"

const dailySyncTimeout = 15 * time.Minute

// SyncRunner is the batch operation the schedule drives.
type SyncRunner interface {
	SyncBatch(ctx context.Context, market string, symbols []string, timeframe string) (int, error)
}

// Scheduler owns the gocron instance for the market-close sync job.
type Scheduler struct {
	cron    *gocron.Scheduler
	sync    SyncRunner
	symbols []string
}

// New creates a Scheduler ticking in the exchange's local time zone.
func New(sync SyncRunner, symbols []string) *Scheduler {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		slog.Warn("failed to load exchange time zone, scheduling in UTC", "error", err)
		loc = time.UTC
	}
	if len(symbols) == 0 {
		symbols = DefaultWatchlist
	}
	return &Scheduler{
		cron:    gocron.NewScheduler(loc),
		sync:    sync,
		symbols: symbols,
	}
}

// Start registers the daily job and runs the scheduler asynchronously.
func (s *Scheduler) Start() {
	if _, err := s.cron.Cron(dailySyncCron).Do(s.runDailySync); err != nil {
		slog.Error("failed to schedule daily sync", "error", err)
		return
	}
	s.cron.StartAsync()
	slog.Info("daily kline sync scheduled", "cron", dailySyncCron, "symbols", len(s.symbols))
}

// Stop halts the scheduler; a running job finishes its current symbol.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runDailySync() {
	slog.Info("starting daily kline sync", "symbols", len(s.symbols))

	ctx, cancel := context.WithTimeout(context.Background(), dailySyncTimeout)
	defer cancel()

	inserted, err := s.sync.SyncBatch(ctx, "AShare", s.symbols, entity.TimeframeDaily)
	if err != nil {
		slog.Error("daily kline sync ended early", "inserted", inserted, "error", err)
		return
	}
	slog.Info("daily kline sync completed", "inserted", inserted)
}
