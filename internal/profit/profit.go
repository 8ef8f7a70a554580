package profit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDays 收益曲线默认天数
const DefaultDays = 30

// DayLayout 横轴标签格式
const DayLayout = "2006-01-02"

// Point 某一天的已实现收益（当日增量，不是累计值）
type Point struct {
	Day    time.Time
	Profit float64
}

// Source 每日收益数据来源
//
// 返回恰好 days 个点，最后一个点是 now 所在的自然日，按时间升序。
type Source interface {
	DailyProfit(ctx context.Context, days int, now time.Time) ([]Point, error)
}

// Series 图表使用的累计收益序列
type Series struct {
	Labels []string
	Values []float64
}

// Len 点数
func (s Series) Len() int { return len(s.Values) }

// Last 最后一个累计值
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Cumulative 把逐日增量累加成运行总额（用 decimal 累加避免浮点漂移）
func Cumulative(points []Point) Series {
	s := Series{
		Labels: make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(decimal.NewFromFloat(p.Profit))
		v, _ := total.Float64()
		s.Labels = append(s.Labels, p.Day.Format(DayLayout))
		s.Values = append(s.Values, v)
	}
	return s
}

// Build 从 Source 取数并生成累计序列
func Build(ctx context.Context, src Source, days int, now time.Time) (Series, error) {
	points, err := src.DailyProfit(ctx, days, now)
	if err != nil {
		return Series{}, err
	}
	return Cumulative(points), nil
}

// StartOfDay now 所在自然日的零点（本地时区）
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Days 以 now 所在日结尾的连续 days 天（升序）
func Days(days int, now time.Time) []time.Time {
	if days <= 0 {
		return nil
	}
	last := StartOfDay(now)
	out := make([]time.Time, days)
	for i := 0; i < days; i++ {
		out[i] = last.AddDate(0, 0, i-(days-1))
	}
	return out
}
