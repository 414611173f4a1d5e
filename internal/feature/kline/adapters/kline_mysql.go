// Package adapters provides the persistence and provider implementations for
// the kline feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kline_backend/internal/feature/kline/domain"
	"kline_backend/internal/feature/kline/domain/entity"
)

type klineMySQL struct {
	db *gorm.DB
}

// NewKlineRepository creates the GORM-backed candle store.
// Requires a *gorm.DB opened with TranslateError so duplicate-key failures
// surface as gorm.ErrDuplicatedKey.
func NewKlineRepository(db *gorm.DB) *klineMySQL {
	return &klineMySQL{db: db}
}

// KlineModel maps one candle row. The unique index over
// (market, symbol, timeframe, kline_time) enforces the natural key and is the
// final arbiter when concurrent syncs race on the same bar.
type KlineModel struct {
	ID        uint      `gorm:"primaryKey"`
	Market    string    `gorm:"size:20;not null;uniqueIndex:uk_kline_data,priority:1"`
	Symbol    string    `gorm:"size:20;not null;uniqueIndex:uk_kline_data,priority:2"`
	Timeframe string    `gorm:"size:10;not null;uniqueIndex:uk_kline_data,priority:3"`
	KlineTime time.Time `gorm:"not null;uniqueIndex:uk_kline_data,priority:4"`

	OpenPrice  decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	HighPrice  decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	LowPrice   decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	ClosePrice decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	Volume     *int64           `gorm:""`
	Amount     *decimal.Decimal `gorm:"type:decimal(24,8)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KlineModel) TableName() string {
	return "kline_data"
}

func toModel(e entity.Candle) KlineModel {
	return KlineModel{
		Market:     e.Market,
		Symbol:     e.Symbol,
		Timeframe:  e.Timeframe,
		KlineTime:  e.Time,
		OpenPrice:  e.Open,
		HighPrice:  e.High,
		LowPrice:   e.Low,
		ClosePrice: e.Close,
		Volume:     e.Volume,
		Amount:     e.Amount,
	}
}

func toEntity(m KlineModel) entity.Candle {
	return entity.Candle{
		Market:    m.Market,
		Symbol:    m.Symbol,
		Timeframe: m.Timeframe,
		Time:      m.KlineTime,
		Open:      m.OpenPrice,
		High:      m.HighPrice,
		Low:       m.LowPrice,
		Close:     m.ClosePrice,
		Volume:    m.Volume,
		Amount:    m.Amount,
	}
}

// Exists reports whether a candle with the given natural key is persisted.
func (r *klineMySQL) Exists(ctx context.Context, market, symbol, timeframe string, t time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&KlineModel{}).
		Where("market = ? AND symbol = ? AND timeframe = ? AND kline_time = ?", market, symbol, timeframe, t).
		Count(&count).Error
	if err != nil {
		return false, &domain.StorageError{Op: "exists", Err: err}
	}
	return count > 0, nil
}

// InsertMany persists the candles in one batch. The caller is expected to
// have pre-filtered duplicates via Exists; a duplicate that slips through is
// rejected by the unique index and reported as domain.ErrConflict.
func (r *klineMySQL) InsertMany(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]KlineModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	if err := r.db.WithContext(ctx).Create(&ms).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return &domain.StorageError{Op: "insert", Err: err}
	}
	return nil
}

// FindRange returns up to limit candles descending by bar time. When before
// is given, only candles strictly older than it are returned; this is the
// pagination cursor for infinite-scroll history.
func (r *klineMySQL) FindRange(ctx context.Context, market, symbol, timeframe string, limit int, before *time.Time) ([]entity.Candle, error) {
	var rows []KlineModel
	q := r.db.WithContext(ctx).
		Where("market = ? AND symbol = ? AND timeframe = ?", market, symbol, timeframe).
		Order("kline_time DESC")
	if before != nil {
		q = q.Where("kline_time < ?", *before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, &domain.StorageError{Op: "find", Err: err}
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// LatestClose returns the most recent persisted candle, or nil when the
// symbol has no history for the timeframe.
func (r *klineMySQL) LatestClose(ctx context.Context, market, symbol, timeframe string) (*entity.Candle, error) {
	var m KlineModel
	err := r.db.WithContext(ctx).
		Where("market = ? AND symbol = ? AND timeframe = ?", market, symbol, timeframe).
		Order("kline_time DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "latest", Err: err}
	}
	c := toEntity(m)
	return &c, nil
}

// DeleteBefore removes candles older than cutoff. Retention sweeps are the
// only path that deletes candle rows.
func (r *klineMySQL) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("kline_time < ?", cutoff).
		Delete(&KlineModel{})
	if res.Error != nil {
		return 0, &domain.StorageError{Op: "delete", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// CountBy returns the number of persisted candles for one natural-key prefix.
func (r *klineMySQL) CountBy(ctx context.Context, market, symbol, timeframe string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&KlineModel{}).
		Where("market = ? AND symbol = ? AND timeframe = ?", market, symbol, timeframe).
		Count(&count).Error
	if err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return count, nil
}
