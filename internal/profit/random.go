package profit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// 占位数据的日收益范围 [RandomMin, RandomMax)
const (
	RandomMin = -200.0
	RandomMax = 800.0
)

// RandomSource 随机占位数据，在真实历史接口可用前使用
type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource seed 为 0 时使用当前时间
func NewRandomSource(seed int64) *RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSource{rnd: rand.New(rand.NewSource(seed))}
}

// DailyProfit 每天一个 [-200, 800) 的均匀随机增量
func (s *RandomSource) DailyProfit(ctx context.Context, days int, now time.Time) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := Days(days, now)
	points := make([]Point, len(dates))
	for i, day := range dates {
		points[i] = Point{
			Day:    day,
			Profit: RandomMin + s.rnd.Float64()*(RandomMax-RandomMin),
		}
	}
	return points, nil
}
