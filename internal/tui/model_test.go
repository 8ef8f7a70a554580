package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaraJura/trade-bot/internal/dashboard"
	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/modal"
	"github.com/TaraJura/trade-bot/internal/notify"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/view"
)

type stubAPI struct {
	mu     sync.Mutex
	result domain.CommandResult
	closed []string
	starts []domain.StartRequest
}

func (s *stubAPI) Status(context.Context) (*domain.BotStatus, error)        { return &domain.BotStatus{}, nil }
func (s *stubAPI) Statistics(context.Context) (*domain.Statistics, error)   { return &domain.Statistics{}, nil }
func (s *stubAPI) Positions(context.Context) ([]domain.Position, error)     { return nil, nil }
func (s *stubAPI) Balances(context.Context) ([]domain.AssetBalance, error)  { return nil, nil }
func (s *stubAPI) Symbols(context.Context) ([]string, error)                { return nil, nil }
func (s *stubAPI) Config(context.Context) (*domain.BotConfig, error)        { return nil, nil }
func (s *stubAPI) Stop(context.Context) (*domain.CommandResult, error)      { return s.res(), nil }
func (s *stubAPI) SaveConfig(context.Context, domain.ConfigRequest) (*domain.CommandResult, error) {
	return s.res(), nil
}
func (s *stubAPI) CreatePosition(context.Context, domain.CreatePositionRequest) (*domain.CommandResult, error) {
	return s.res(), nil
}
func (s *stubAPI) UpdatePosition(context.Context, string, domain.UpdatePositionRequest) (*domain.CommandResult, error) {
	return s.res(), nil
}

func (s *stubAPI) Start(_ context.Context, req domain.StartRequest) (*domain.CommandResult, error) {
	s.mu.Lock()
	s.starts = append(s.starts, req)
	s.mu.Unlock()
	return s.res(), nil
}

func (s *stubAPI) ClosePosition(_ context.Context, symbol string) (*domain.CommandResult, error) {
	s.mu.Lock()
	s.closed = append(s.closed, symbol)
	s.mu.Unlock()
	return s.res(), nil
}

func (s *stubAPI) res() *domain.CommandResult {
	r := s.result
	return &r
}

type countingRefresher struct {
	mu    sync.Mutex
	calls map[scheduler.Resource]int
}

func (c *countingRefresher) Trigger(r scheduler.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[scheduler.Resource]int)
	}
	c.calls[r]++
	return nil
}

func newTestModel(api *stubAPI, refresh *countingRefresher) *Model {
	return New(context.Background(), Options{
		Dispatcher: dashboard.NewDispatcher(api, refresh),
		Refresher:  refresh,
		State:      dashboard.NewState(time.UTC),
		Notices:    notify.NewCenter(time.Minute),
		Startup: dashboard.Startup{
			Symbols: []string{"BTCUSDT", "ETHUSDT"},
			Config:  domain.DefaultBotConfig(),
		},
		DefaultStrategy: "sma",
		DefaultInterval: "15m",
		DefaultTestMode: true,
		BaseURL:         "http://localhost:5000",
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next)
	return cmd
}

// runCmd 执行命令并把结果送回模型
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	out, ok := msg.(OutcomeMsg)
	require.True(t, ok, "unexpected msg %T", msg)
	send(t, m, out)
}

func withPositions(t *testing.T, m *Model) {
	send(t, m, EventMsg{Event: scheduler.Event{
		Resource: scheduler.ResourcePositions,
		Value: []domain.Position{
			{Symbol: "BTCUSDT", Quantity: 0.1, EntryPrice: 100, CurrentPrice: 110, PnL: 1},
			{Symbol: "ETHUSDT", Quantity: 1, EntryPrice: 10, CurrentPrice: 9, PnL: -1},
		},
	}})
}

func TestControlFormPrefill(t *testing.T) {
	m := newTestModel(&stubAPI{}, &countingRefresher{})
	assert.Equal(t, "sma", m.control.value(keyStrategy))
	assert.Equal(t, "BTCUSDT", m.control.value(keySymbol))
	assert.Equal(t, "15m", m.control.value(keyInterval))
	assert.True(t, m.control.checked(keyTestMode))
	assert.Equal(t, "0.1", m.control.value(keyMaxPosition))
	assert.Equal(t, "2", m.control.value(keyStopLoss))
	assert.Equal(t, "3", m.control.value(keyTakeProfit))
}

func TestStartButtonSendsForm(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: true}}
	refresh := &countingRefresher{}
	m := newTestModel(api, refresh)

	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m.control.focus = m.control.index(keyStart)
	runCmd(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	require.Len(t, api.starts, 1)
	assert.Equal(t, domain.StartRequest{Strategy: "sma", Symbol: "ETHUSDT", Interval: "15m", TestMode: true}, api.starts[0])
	assert.Equal(t, view.ControlsFor(true), m.state.Controls)
	assert.Equal(t, 1, refresh.calls[scheduler.ResourceStatus])

	// 运行中 Start 不可用
	assert.Nil(t, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestRejectedStartShowsServerMessage(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: false, Message: "Invalid symbol"}}
	m := newTestModel(api, &countingRefresher{})
	before := m.state.Controls

	m.control.focus = m.control.index(keyStart)
	runCmd(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	active := m.notices.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Invalid symbol", active[0].Message)
	assert.Equal(t, notify.KindError, active[0].Kind)
	assert.Equal(t, before, m.state.Controls)
	assert.False(t, m.busy)
}

func TestAddThenEditThenCloseModalViaKeys(t *testing.T) {
	m := newTestModel(&stubAPI{}, &countingRefresher{})
	withPositions(t, m)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, tabDashboard, m.tab)

	send(t, m, keyRunes("a"))
	assert.Equal(t, modal.ModeAdd, m.modal.Mode())
	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	send(t, m, keyRunes("j"))
	send(t, m, keyRunes("e"))
	assert.Equal(t, modal.ModeEdit, m.modal.Mode())
	assert.Equal(t, "ETHUSDT", m.modal.EditSymbol())
	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.modal.IsOpen())
	assert.True(t, m.modal.Field(modal.FieldQuantity).Visible)
	assert.True(t, m.modal.Field(modal.FieldQuantity).Enabled)
	assert.True(t, m.modal.Field(modal.FieldPrice).Visible)
	assert.True(t, m.modal.Field(modal.FieldPrice).Enabled)
}

func TestModalSubmitClosesOnSuccess(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: true}}
	refresh := &countingRefresher{}
	m := newTestModel(api, refresh)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("a"))

	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("2"))
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("100"))
	runCmd(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.False(t, m.modal.IsOpen())
	assert.Equal(t, 1, refresh.calls[scheduler.ResourcePositions])
}

func TestLateSubmitOutcomeLeavesReopenedModal(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: true}}
	m := newTestModel(api, &countingRefresher{})
	withPositions(t, m)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})

	send(t, m, keyRunes("a"))
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("2"))
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("100"))
	pending := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, pending)

	// 提交还没返回，用户关掉弹窗去编辑另一行
	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	send(t, m, keyRunes("j"))
	send(t, m, keyRunes("e"))
	require.Equal(t, modal.ModeEdit, m.modal.Mode())

	runCmd(t, m, pending)
	assert.Equal(t, modal.ModeEdit, m.modal.Mode())
	assert.Equal(t, "ETHUSDT", m.modal.EditSymbol())
	assert.Equal(t, "Position created successfully", m.notices.Active()[0].Message)
}

func TestConfirmIgnoredWhileBusy(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: true}}
	m := newTestModel(api, &countingRefresher{})
	withPositions(t, m)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})

	send(t, m, keyRunes("x"))
	first := send(t, m, keyRunes("y"))
	require.NotNil(t, first)
	require.True(t, m.busy)

	send(t, m, keyRunes("x"))
	assert.Nil(t, send(t, m, keyRunes("y")))
	assert.Equal(t, "BTCUSDT", m.confirm)

	runCmd(t, m, first)
	assert.Equal(t, []string{"BTCUSDT"}, api.closed)
	assert.False(t, m.busy)
}

func TestModalValidationKeepsModalOpen(t *testing.T) {
	m := newTestModel(&stubAPI{}, &countingRefresher{})
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("a"))
	assert.Nil(t, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.True(t, m.modal.IsOpen())
	require.Len(t, m.notices.Active(), 1)
	assert.Equal(t, notify.KindError, m.notices.Active()[0].Kind)
}

func TestClosePositionRequiresConfirmation(t *testing.T) {
	api := &stubAPI{result: domain.CommandResult{Success: true}}
	refresh := &countingRefresher{}
	m := newTestModel(api, refresh)
	withPositions(t, m)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})

	send(t, m, keyRunes("x"))
	assert.Equal(t, "BTCUSDT", m.confirm)
	assert.Contains(t, m.View(), "Are you sure you want to close the position for BTCUSDT?")
	assert.Nil(t, send(t, m, keyRunes("n")))
	assert.Empty(t, m.confirm)
	assert.Empty(t, api.closed)

	send(t, m, keyRunes("x"))
	runCmd(t, m, send(t, m, keyRunes("y")))
	assert.Equal(t, []string{"BTCUSDT"}, api.closed)
	assert.Equal(t, 1, refresh.calls[scheduler.ResourcePositions])
	assert.Equal(t, 1, refresh.calls[scheduler.ResourceStatistics])
	assert.Equal(t, "Position closed successfully", m.notices.Active()[0].Message)
}

func TestTickExpiresNotices(t *testing.T) {
	m := newTestModel(&stubAPI{}, &countingRefresher{})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.notices.SetClock(func() time.Time { return now })
	m.notices.Success("ok")

	now = now.Add(2 * time.Minute)
	cmd := send(t, m, tickMsg(now))
	assert.NotNil(t, cmd)
	assert.Equal(t, 0, m.notices.Len())
}

func TestRefreshKeyTriggersAllResources(t *testing.T) {
	refresh := &countingRefresher{}
	m := newTestModel(&stubAPI{}, refresh)
	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	send(t, m, keyRunes("r"))
	assert.Len(t, refresh.calls, 4)
}

func TestViewRendersEmptyTables(t *testing.T) {
	m := newTestModel(&stubAPI{}, &countingRefresher{})
	send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	send(t, m, EventMsg{Event: scheduler.Event{
		Resource: scheduler.ResourceStatus,
		Value:    domain.BotStatus{IsRunning: true, TestMode: true},
	}})

	out := m.View()
	assert.Contains(t, out, "Running (Test Mode)")
	assert.Contains(t, out, view.NoPositions)
	assert.Contains(t, out, view.NoTrades)

	send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "Win Rate")
}
