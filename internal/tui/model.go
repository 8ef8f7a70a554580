package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/dashboard"
	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/modal"
	"github.com/TaraJura/trade-bot/internal/notify"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/view"
)

var modelLog = logrus.WithField("module", "tui.model")

// tickInterval 通知过期检查频率
const tickInterval = 250 * time.Millisecond

// 控制页表单字段
const (
	keyStrategy    = "strategy"
	keySymbol      = "symbol"
	keyInterval    = "interval"
	keyTestMode    = "test_mode"
	keyStart       = "start"
	keyStop        = "stop"
	keyMaxPosition = "max_position_size"
	keyStopLoss    = "stop_loss"
	keyTakeProfit  = "take_profit"
	keySaveConfig  = "save_config"
)

type tab int

const (
	tabControl tab = iota
	tabDashboard
)

// EventMsg 调度器拉取结果（由 Program.Send 投递）
type EventMsg struct {
	Event scheduler.Event
}

// OutcomeMsg 命令执行结果
type OutcomeMsg struct {
	Outcome dashboard.Outcome
}

type tickMsg time.Time

// Options 构造参数
type Options struct {
	Dispatcher *dashboard.Dispatcher
	// Refresher 可为 nil，"r" 手动刷新时使用
	Refresher dashboard.Refresher
	State     *dashboard.State
	Notices   *notify.Center
	Startup   dashboard.Startup

	DefaultStrategy string
	DefaultInterval string
	DefaultTestMode bool

	CommandTimeout time.Duration
	BaseURL        string
}

// Model bubbletea 模型；所有界面状态只在 Update 里修改
type Model struct {
	ctx  context.Context
	opts Options

	state   *dashboard.State
	notices *notify.Center
	modal   *modal.Modal
	control form

	tab      tab
	selected int
	// confirm 等待确认平仓的交易对
	confirm string
	busy    bool

	width  int
	height int
}

// New 创建模型，ctx 取消后在途命令随之取消
func New(ctx context.Context, opts Options) *Model {
	if opts.State == nil {
		opts.State = dashboard.NewState(nil)
	}
	if opts.Notices == nil {
		opts.Notices = notify.NewCenter(notify.DefaultTTL)
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}
	return &Model{
		ctx:     ctx,
		opts:    opts,
		state:   opts.State,
		notices: opts.Notices,
		modal:   modal.New(opts.Startup.Symbols),
		control: newControlForm(opts),
	}
}

func newControlForm(opts Options) form {
	strategy := opts.DefaultStrategy
	if strategy == "" {
		strategy = domain.Strategies[0]
	}
	interval := opts.DefaultInterval
	if interval == "" {
		interval = "1h"
	}

	symbols := opts.Startup.Symbols
	symbol := ""
	if len(symbols) > 0 {
		symbol = symbols[0]
	}

	cfg := opts.Startup.Config
	return form{fields: []formField{
		{key: keyStrategy, label: "Strategy", kind: kindChoice, value: strategy, choices: domain.Strategies},
		{key: keySymbol, label: "Symbol", kind: kindChoice, value: symbol, choices: symbols},
		{key: keyInterval, label: "Interval", kind: kindChoice, value: interval, choices: domain.Intervals},
		{key: keyTestMode, label: "Test Mode", kind: kindToggle, checked: opts.DefaultTestMode},
		{key: keyStart, label: "Start Bot", kind: kindButton},
		{key: keyStop, label: "Stop Bot", kind: kindButton},
		{key: keyMaxPosition, label: "Max Position Size", kind: kindNumber, value: view.Number(cfg.MaxPositionSize)},
		{key: keyStopLoss, label: "Stop Loss (%)", kind: kindNumber, value: view.FractionToPercent(cfg.StopLossPercentage)},
		{key: keyTakeProfit, label: "Take Profit (%)", kind: kindNumber, value: view.FractionToPercent(cfg.TakeProfitPercentage)},
		{key: keySaveConfig, label: "Save Configuration", kind: kindButton},
	}}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case EventMsg:
		m.state.ApplyEvent(msg.Event)
		m.clampSelection()
		return m, nil
	case OutcomeMsg:
		m.applyOutcome(msg.Outcome)
		return m, nil
	case tickMsg:
		m.notices.Expire()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyOutcome(o dashboard.Outcome) {
	m.busy = false
	m.state.ApplyOutcome(o)
	m.notices.Notify(o.Message, o.Kind)
	if o.CloseModal && m.modal.IsOpen() && m.modal.Session() == o.ModalSession {
		m.modal.Close()
	}
}

// runCommand 在 goroutine 中执行命令，结果以 OutcomeMsg 回到事件循环
func (m *Model) runCommand(fn func(ctx context.Context) dashboard.Outcome) tea.Cmd {
	if m.opts.Dispatcher == nil {
		return nil
	}
	m.busy = true
	parent, timeout := m.ctx, m.opts.CommandTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return OutcomeMsg{Outcome: fn(ctx)}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != "" {
		return m, m.handleConfirmKey(key)
	}
	if m.modal.IsOpen() {
		return m, m.handleModalKey(msg)
	}

	switch key {
	case "tab":
		m.switchTab()
		return m, nil
	}

	if m.tab == tabControl {
		return m.handleControlKey(msg)
	}
	return m.handleDashboardKey(key)
}

func (m *Model) switchTab() {
	if m.tab == tabControl {
		m.tab = tabDashboard
	} else {
		m.tab = tabControl
	}
}

func (m *Model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		if m.busy {
			return nil
		}
		symbol := m.confirm
		m.confirm = ""
		d := m.opts.Dispatcher
		return m.runCommand(func(ctx context.Context) dashboard.Outcome {
			return d.ClosePosition(ctx, symbol)
		})
	case "n", "N", "esc":
		m.confirm = ""
	}
	return nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.modal.Close()
	case "tab", "down":
		m.modal.FocusNext()
	case "shift+tab", "up":
		m.modal.FocusPrev()
	case "left":
		m.modal.CycleSymbol(-1)
	case "right":
		m.modal.CycleSymbol(1)
	case "backspace":
		m.modal.Backspace()
	case "enter":
		if m.busy {
			return nil
		}
		sub, err := m.modal.Submit()
		if err != nil {
			m.notices.Error(err.Error())
			return nil
		}
		d := m.opts.Dispatcher
		return m.runCommand(func(ctx context.Context) dashboard.Outcome {
			return d.SubmitPosition(ctx, sub)
		})
	default:
		if msg.Type == tea.KeyRunes {
			m.modal.Input(string(msg.Runes))
		}
	}
	return nil
}

func (m *Model) handleControlKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "shift+tab":
		m.control.move(-1)
		return m, nil
	case "down":
		m.control.move(1)
		return m, nil
	case "left":
		m.control.cycle(-1)
		return m, nil
	case "right":
		m.control.cycle(1)
		return m, nil
	case " ":
		if f := m.control.focused(); f != nil && f.kind == kindToggle {
			f.checked = !f.checked
		}
		return m, nil
	case "backspace":
		m.control.backspace()
		return m, nil
	case "enter":
		return m, m.activate()
	}

	if msg.Type == tea.KeyRunes && m.control.input(string(msg.Runes)) {
		return m, nil
	}
	return m, m.globalKey(msg.String())
}

// activate 回车：按钮执行命令，开关取反
func (m *Model) activate() tea.Cmd {
	f := m.control.focused()
	if f == nil {
		return nil
	}
	if f.kind == kindToggle {
		f.checked = !f.checked
		return nil
	}
	if f.kind != kindButton || m.busy {
		return nil
	}

	d := m.opts.Dispatcher
	switch f.key {
	case keyStart:
		if !m.state.Controls.StartEnabled {
			return nil
		}
		req := domain.StartRequest{
			Strategy: m.control.value(keyStrategy),
			Symbol:   m.control.value(keySymbol),
			Interval: m.control.value(keyInterval),
			TestMode: m.control.checked(keyTestMode),
		}
		return m.runCommand(func(ctx context.Context) dashboard.Outcome {
			return d.Start(ctx, req)
		})
	case keyStop:
		if !m.state.Controls.StopEnabled {
			return nil
		}
		return m.runCommand(func(ctx context.Context) dashboard.Outcome {
			return d.Stop(ctx)
		})
	case keySaveConfig:
		cf := dashboard.ConfigForm{
			MaxPositionSize:   m.control.value(keyMaxPosition),
			StopLossPercent:   m.control.value(keyStopLoss),
			TakeProfitPercent: m.control.value(keyTakeProfit),
		}
		return m.runCommand(func(ctx context.Context) dashboard.Outcome {
			return d.SaveConfig(ctx, cf)
		})
	}
	return nil
}

func (m *Model) handleDashboardKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.state.Managed)-1 {
			m.selected++
		}
	case "a":
		m.modal.OpenAdd()
	case "e":
		if row, ok := m.selectedRow(); ok {
			m.modal.OpenEdit(row.Symbol, row.RawStopLoss, row.RawTakeProfit)
		}
	case "x", "d":
		if row, ok := m.selectedRow(); ok {
			m.confirm = row.Symbol
		}
	default:
		return m, m.globalKey(key)
	}
	return m, nil
}

func (m *Model) globalKey(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "r":
		m.refreshAll()
	}
	return nil
}

func (m *Model) refreshAll() {
	if m.opts.Refresher == nil {
		return
	}
	for _, r := range []scheduler.Resource{
		scheduler.ResourceStatus,
		scheduler.ResourceStatistics,
		scheduler.ResourcePositions,
		scheduler.ResourceBalances,
	} {
		if err := m.opts.Refresher.Trigger(r); err != nil {
			modelLog.Debugf("手动刷新 %s 失败: %v", r, err)
		}
	}
}

func (m *Model) selectedRow() (view.ManagedPositionRow, bool) {
	if m.selected < 0 || m.selected >= len(m.state.Managed) {
		return view.ManagedPositionRow{}, false
	}
	return m.state.Managed[m.selected], true
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.state.Managed) {
		m.selected = len(m.state.Managed) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
