package dashboard

import (
	"context"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/scheduler"
)

// API 交易机器人后端（*botapi.Client 实现）
type API interface {
	Status(ctx context.Context) (*domain.BotStatus, error)
	Statistics(ctx context.Context) (*domain.Statistics, error)
	Positions(ctx context.Context) ([]domain.Position, error)
	Balances(ctx context.Context) ([]domain.AssetBalance, error)
	Symbols(ctx context.Context) ([]string, error)
	Config(ctx context.Context) (*domain.BotConfig, error)

	Start(ctx context.Context, req domain.StartRequest) (*domain.CommandResult, error)
	Stop(ctx context.Context) (*domain.CommandResult, error)
	SaveConfig(ctx context.Context, req domain.ConfigRequest) (*domain.CommandResult, error)
	CreatePosition(ctx context.Context, req domain.CreatePositionRequest) (*domain.CommandResult, error)
	UpdatePosition(ctx context.Context, symbol string, req domain.UpdatePositionRequest) (*domain.CommandResult, error)
	ClosePosition(ctx context.Context, symbol string) (*domain.CommandResult, error)
}

// Refresher 触发资源立即刷新（*scheduler.Scheduler 实现）
type Refresher interface {
	Trigger(resource scheduler.Resource) error
}

// Recorder 成交落库（*journal.Store 实现）
type Recorder interface {
	Record(ctx context.Context, trades []domain.Trade) (int, error)
}
