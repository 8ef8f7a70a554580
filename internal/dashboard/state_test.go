package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/profit"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/view"
)

func ptr(v float64) *float64 { return &v }

func runningStatus() domain.BotStatus {
	return domain.BotStatus{
		IsRunning:   true,
		TestMode:    true,
		Strategy:    "combined",
		USDTBalance: ptr(1000),
		TotalValue:  ptr(1234.5),
		Positions: []domain.Position{
			{Symbol: "BTCUSDT", Quantity: 0.01, EntryPrice: 60000, CurrentPrice: 61000, PnL: 10, PnLPercentage: 1.67},
		},
		RecentTrades: []domain.Trade{
			{Timestamp: domain.NewTimestampMillis(1700000000000), Symbol: "BTCUSDT", Action: domain.ActionBuy, Price: 60000, Quantity: 0.01},
		},
	}
}

func TestApplyStatus(t *testing.T) {
	s := NewState(time.UTC)
	assert.Equal(t, view.Connecting, s.Indicator)

	ok := s.ApplyEvent(scheduler.Event{Resource: scheduler.ResourceStatus, Value: runningStatus(), At: time.Now()})
	require.True(t, ok)

	assert.Equal(t, "Running (Test Mode)", s.Indicator.Text)
	assert.Equal(t, view.ClassOnline, s.Indicator.Class)
	assert.Equal(t, view.Controls{StartEnabled: false, StopEnabled: true}, s.Controls)
	assert.Equal(t, "1000.00", s.USDTBalance)
	assert.Equal(t, "1234.50", s.TotalValue)
	require.Len(t, s.Positions, 1)
	require.Len(t, s.Trades, 1)
	assert.Equal(t, "-", s.Trades[0].Profit)
	assert.Contains(t, s.Updated, scheduler.ResourceStatus)
}

func TestApplyStatusWithoutBalancesKeepsPrevious(t *testing.T) {
	s := NewState(time.UTC)
	s.ApplyStatus(runningStatus())
	s.ApplyStatus(domain.BotStatus{IsRunning: false, Message: "Bot not initialized"})

	assert.Equal(t, "Offline", s.Indicator.Text)
	assert.Equal(t, view.ControlsFor(false), s.Controls)
	assert.Equal(t, "1000.00", s.USDTBalance)
	assert.Empty(t, s.Positions)
	assert.Empty(t, s.Trades)
}

func TestFailedFetchLeavesStateUntouched(t *testing.T) {
	s := NewState(time.UTC)
	s.ApplyStatus(runningStatus())
	before := *s

	ok := s.ApplyEvent(scheduler.Event{Resource: scheduler.ResourceStatus, Err: errors.New("connection refused")})
	assert.False(t, ok)
	assert.Equal(t, before.Indicator, s.Indicator)
	assert.Equal(t, before.Controls, s.Controls)
	assert.Equal(t, before.Positions, s.Positions)
	assert.Equal(t, before.Trades, s.Trades)
}

func TestApplyStatistics(t *testing.T) {
	s := NewState(time.UTC)
	series := profit.Series{Labels: []string{"2024-01-01"}, Values: []float64{10}}
	s.ApplyEvent(scheduler.Event{
		Resource: scheduler.ResourceStatistics,
		Value: StatisticsSnapshot{
			Stats:  domain.Statistics{TotalTrades: 4, WinRate: 75, WinningTrades: 3, LosingTrades: 1},
			Series: &series,
		},
	})
	assert.Equal(t, "75.0%", s.KPIs.WinRate)
	assert.Equal(t, [2]int{3, 1}, s.WinLoss.Values)
	assert.Equal(t, series, s.Profit)

	// 曲线生成失败时保留旧曲线
	s.ApplyStatistics(StatisticsSnapshot{Stats: domain.Statistics{TotalTrades: 5}})
	assert.Equal(t, "5", s.KPIs.TotalTrades)
	assert.Equal(t, series, s.Profit)
}

func TestApplyPositionsAndBalances(t *testing.T) {
	s := NewState(time.UTC)
	s.ApplyEvent(scheduler.Event{Resource: scheduler.ResourcePositions, Value: []domain.Position{{Symbol: "ETHUSDT", StopLoss: ptr(1)}}})
	require.Len(t, s.Managed, 1)
	assert.Equal(t, "$1.00", s.Managed[0].StopLoss)

	s.ApplyEvent(scheduler.Event{Resource: scheduler.ResourceBalances, Value: []domain.AssetBalance{
		{Asset: "USDT", Free: decimal.RequireFromString("100.5"), Locked: decimal.Zero},
		{Asset: "DOGE", Free: decimal.Zero, Locked: decimal.Zero},
		{Asset: "BTC", Free: decimal.Zero, Locked: decimal.RequireFromString("0.001")},
	}})
	require.Len(t, s.Balances, 2)
	assert.Equal(t, "USDT", s.Balances[0].Asset)
	assert.Equal(t, "100.5", s.Balances[0].Free)
	assert.Equal(t, "BTC", s.Balances[1].Asset)
}

func TestApplyEventUnknownValue(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.ApplyEvent(scheduler.Event{Resource: scheduler.ResourceStatus, Value: 42}))
}

func TestJobsStatusRecordsTrades(t *testing.T) {
	api := newFakeAPI()
	st := runningStatus()
	api.status = &st
	rec := &fakeRecorder{}

	jobs := Jobs(api, profit.NewRandomSource(1), rec, Intervals{Status: time.Second, Statistics: time.Second, Balances: time.Second})
	require.Len(t, jobs, 4)
	assert.Equal(t, scheduler.ResourceStatus, jobs[0].Resource)

	v, err := jobs[0].Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st, v)
	require.Len(t, rec.batches, 1)
	assert.Len(t, rec.batches[0], 1)

	// 落库失败不影响状态轮询
	rec.err = errors.New("disk full")
	_, err = jobs[0].Fetch(context.Background())
	assert.NoError(t, err)
}

func TestJobsStatisticsBuildsSeries(t *testing.T) {
	api := newFakeAPI()
	api.statistics = &domain.Statistics{TotalTrades: 2}

	snap, err := FetchStatistics(context.Background(), api, profit.NewRandomSource(3), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Stats.TotalTrades)
	require.NotNil(t, snap.Series)
	assert.Equal(t, profit.DefaultDays, snap.Series.Len())

	api.fetchErr = errors.New("boom")
	_, err = FetchStatistics(context.Background(), api, profit.NewRandomSource(3), time.Now())
	assert.Error(t, err)
}

type failingSource struct{}

func (failingSource) DailyProfit(ctx context.Context, days int, now time.Time) ([]profit.Point, error) {
	return nil, errors.New("journal closed")
}

func TestStatisticsSurvivesProfitSourceFailure(t *testing.T) {
	api := newFakeAPI()
	api.statistics = &domain.Statistics{TotalTrades: 1}
	snap, err := FetchStatistics(context.Background(), api, failingSource{}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, snap.Series)
}

func TestLoadStartup(t *testing.T) {
	api := newFakeAPI()
	api.symbols = []string{"BTCUSDT"}
	api.config = &domain.BotConfig{MaxPositionSize: 0.2}
	st := LoadStartup(context.Background(), api)
	assert.Equal(t, []string{"BTCUSDT"}, st.Symbols)
	assert.Equal(t, 0.2, st.Config.MaxPositionSize)

	api.fetchErr = errors.New("offline")
	st = LoadStartup(context.Background(), api)
	assert.Nil(t, st.Symbols)
	assert.Equal(t, domain.DefaultBotConfig(), st.Config)
}
