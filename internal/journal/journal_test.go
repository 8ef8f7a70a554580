package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaraJura/trade-bot/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func trade(at time.Time, action domain.Action, price float64, p *float64) domain.Trade {
	return domain.Trade{
		Timestamp: domain.NewTimestampMillis(at.UnixMilli()),
		Symbol:    "BTCUSDT",
		Action:    action,
		Price:     price,
		Quantity:  0.01,
		Profit:    p,
	}
}

func TestRecordDeduplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	batch := []domain.Trade{
		trade(at, domain.ActionBuy, 65000, nil),
		trade(at.Add(time.Minute), domain.ActionSell, 66000, ptr(10)),
		{Symbol: "ETHUSDT"},
	}
	n, err := s.Record(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 下一次轮询会再看到同样的成交
	n, err = s.Record(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDailyProfitBucketsByDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	_, err := s.Record(ctx, []domain.Trade{
		trade(time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC), domain.ActionSell, 1, ptr(5)),
		trade(time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC), domain.ActionSell, 2, ptr(-2)),
		trade(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), domain.ActionSell, 3, ptr(7)),
		trade(time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), domain.ActionBuy, 4, nil),
		trade(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), domain.ActionSell, 5, ptr(1000)),
	})
	require.NoError(t, err)

	points, err := s.DailyProfit(ctx, 3, now)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), points[0].Day)
	assert.Equal(t, 0.0, points[0].Profit)
	assert.Equal(t, 7.0, points[1].Profit)
	assert.Equal(t, 3.0, points[2].Profit)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
