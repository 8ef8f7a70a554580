package dashboard

import (
	"context"
	"sync"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/scheduler"
)

type fakeAPI struct {
	mu sync.Mutex

	status     *domain.BotStatus
	statistics *domain.Statistics
	positions  []domain.Position
	balances   []domain.AssetBalance
	symbols    []string
	config     *domain.BotConfig
	fetchErr   error

	result     *domain.CommandResult
	commandErr error

	started    []domain.StartRequest
	configs    []domain.ConfigRequest
	created    []domain.CreatePositionRequest
	updated    map[string]domain.UpdatePositionRequest
	closed     []string
	stopCalled int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		result:  &domain.CommandResult{Success: true},
		updated: make(map[string]domain.UpdatePositionRequest),
	}
}

func (f *fakeAPI) Status(ctx context.Context) (*domain.BotStatus, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.status, nil
}

func (f *fakeAPI) Statistics(ctx context.Context) (*domain.Statistics, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.statistics, nil
}

func (f *fakeAPI) Positions(ctx context.Context) ([]domain.Position, error) {
	return f.positions, f.fetchErr
}

func (f *fakeAPI) Balances(ctx context.Context) ([]domain.AssetBalance, error) {
	return f.balances, f.fetchErr
}

func (f *fakeAPI) Symbols(ctx context.Context) ([]string, error) {
	return f.symbols, f.fetchErr
}

func (f *fakeAPI) Config(ctx context.Context) (*domain.BotConfig, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.config, nil
}

func (f *fakeAPI) Start(ctx context.Context, req domain.StartRequest) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req)
	return f.result, f.commandErr
}

func (f *fakeAPI) Stop(ctx context.Context) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalled++
	return f.result, f.commandErr
}

func (f *fakeAPI) SaveConfig(ctx context.Context, req domain.ConfigRequest) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, req)
	return f.result, f.commandErr
}

func (f *fakeAPI) CreatePosition(ctx context.Context, req domain.CreatePositionRequest) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return f.result, f.commandErr
}

func (f *fakeAPI) UpdatePosition(ctx context.Context, symbol string, req domain.UpdatePositionRequest) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[symbol] = req
	return f.result, f.commandErr
}

func (f *fakeAPI) ClosePosition(ctx context.Context, symbol string) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, symbol)
	return f.result, f.commandErr
}

type fakeRefresher struct {
	mu       sync.Mutex
	triggers []scheduler.Resource
}

func (f *fakeRefresher) Trigger(resource scheduler.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, resource)
	return nil
}

func (f *fakeRefresher) count(resource scheduler.Resource) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.triggers {
		if r == resource {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	batches [][]domain.Trade
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, trades []domain.Trade) (int, error) {
	f.batches = append(f.batches, trades)
	return len(trades), f.err
}
