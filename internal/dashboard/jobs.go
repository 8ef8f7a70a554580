package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/profit"
	"github.com/TaraJura/trade-bot/internal/scheduler"
)

var jobsLog = logrus.WithField("module", "dashboard.jobs")

// Intervals 各资源的轮询周期；持仓与统计同周期
type Intervals struct {
	Status     time.Duration
	Statistics time.Duration
	Balances   time.Duration
}

// StatisticsSnapshot 统计资源的一次拉取结果
type StatisticsSnapshot struct {
	Stats domain.Statistics
	// Series 收益曲线；数据源失败时为 nil，界面保留旧曲线
	Series *profit.Series
}

// Jobs 生成调度任务。recorder 可为 nil；source 为 nil 时使用随机占位数据
func Jobs(api API, source profit.Source, recorder Recorder, iv Intervals) []scheduler.Job {
	if source == nil {
		source = profit.NewRandomSource(0)
	}
	return []scheduler.Job{
		{
			Resource:  scheduler.ResourceStatus,
			Interval:  iv.Status,
			Immediate: true,
			Fetch: func(ctx context.Context) (any, error) {
				status, err := api.Status(ctx)
				if err != nil {
					return nil, err
				}
				if recorder != nil && len(status.RecentTrades) > 0 {
					if _, err := recorder.Record(ctx, status.RecentTrades); err != nil {
						jobsLog.Warnf("记录成交失败: %v", err)
					}
				}
				return *status, nil
			},
		},
		{
			Resource:  scheduler.ResourceStatistics,
			Interval:  iv.Statistics,
			Immediate: true,
			Fetch: func(ctx context.Context) (any, error) {
				return FetchStatistics(ctx, api, source, time.Now())
			},
		},
		{
			Resource:  scheduler.ResourcePositions,
			Interval:  iv.Statistics,
			Immediate: true,
			Fetch: func(ctx context.Context) (any, error) {
				return api.Positions(ctx)
			},
		},
		{
			Resource:  scheduler.ResourceBalances,
			Interval:  iv.Balances,
			Immediate: true,
			Fetch: func(ctx context.Context) (any, error) {
				return api.Balances(ctx)
			},
		},
	}
}

// FetchStatistics 拉取统计并生成 30 天累计收益曲线
func FetchStatistics(ctx context.Context, api API, source profit.Source, now time.Time) (StatisticsSnapshot, error) {
	stats, err := api.Statistics(ctx)
	if err != nil {
		return StatisticsSnapshot{}, err
	}
	snap := StatisticsSnapshot{Stats: *stats}
	series, err := profit.Build(ctx, source, profit.DefaultDays, now)
	if err != nil {
		jobsLog.Warnf("生成收益曲线失败: %v", err)
		return snap, nil
	}
	snap.Series = &series
	return snap, nil
}

// Startup 启动时一次性读取的数据
type Startup struct {
	Symbols []string
	Config  domain.BotConfig
}

// LoadStartup 读取交易对和当前配置；失败只记日志，使用回退值
func LoadStartup(ctx context.Context, api API) Startup {
	st := Startup{Config: domain.DefaultBotConfig()}

	symbols, err := api.Symbols(ctx)
	if err != nil {
		jobsLog.Errorf("加载交易对失败: %v", err)
	} else {
		st.Symbols = symbols
	}

	cfg, err := api.Config(ctx)
	if err != nil {
		jobsLog.Errorf("加载配置失败: %v", err)
	} else if cfg != nil {
		st.Config = *cfg
	}
	return st
}
