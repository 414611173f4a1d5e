package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSyncRunner struct {
	calls     int
	market    string
	symbols   []string
	timeframe string
}

func (m *mockSyncRunner) SyncBatch(ctx context.Context, market string, symbols []string, timeframe string) (int, error) {
	m.calls++
	m.market = market
	m.symbols = symbols
	m.timeframe = timeframe
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return 0, context.DeadlineExceeded
	}
	return 42, nil
}

func TestScheduler_RunDailySync(t *testing.T) {
	runner := &mockSyncRunner{}
	s := New(runner, nil)

	s.runDailySync()

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "AShare", runner.market)
	assert.Equal(t, "1D", runner.timeframe)
	assert.Equal(t, DefaultWatchlist, runner.symbols, "an empty override falls back to the watchlist")
}

func TestScheduler_CustomSymbolsOverrideWatchlist(t *testing.T) {
	runner := &mockSyncRunner{}
	s := New(runner, []string{"600519"})

	s.runDailySync()

	assert.Equal(t, []string{"600519"}, runner.symbols)
}

func TestScheduler_StartAndStop(t *testing.T) {
	s := New(&mockSyncRunner{}, nil)
	require.NotNil(t, s)

	s.Start()
	s.Stop()
}
