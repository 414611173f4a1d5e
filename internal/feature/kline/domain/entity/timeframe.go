package entity

// Persisted timeframes. Daily and coarser bars are the durable historical
// record; minute bars are served live from the provider and never stored.
const (
	TimeframeDaily   = "1D"
	TimeframeWeekly  = "1W"
	TimeframeMonthly = "1M"
)

var minuteTimeframes = map[string]struct{}{
	"1m": {}, "5m": {}, "15m": {}, "30m": {}, "60m": {},
}

var dailyTimeframes = map[string]struct{}{
	TimeframeDaily: {}, TimeframeWeekly: {}, TimeframeMonthly: {},
}

// IsMinuteTimeframe reports whether tf is one of the live minute
// granularities (1m, 5m, 15m, 30m, 60m).
func IsMinuteTimeframe(tf string) bool {
	_, ok := minuteTimeframes[tf]
	return ok
}

// IsValidTimeframe reports whether tf is a known timeframe, persisted or live.
func IsValidTimeframe(tf string) bool {
	if _, ok := dailyTimeframes[tf]; ok {
		return true
	}
	return IsMinuteTimeframe(tf)
}
