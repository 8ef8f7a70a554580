package dashboard

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/profit"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/view"
)

var stateLog = logrus.WithField("module", "dashboard.state")

// State 界面状态，只在事件循环里修改
//
// 每次轮询整表替换；拉取失败时保留上一次的内容，不弹错误提示。
type State struct {
	Indicator   view.Indicator
	Controls    view.Controls
	Strategy    string
	USDTBalance string
	TotalValue  string

	Positions []view.PositionRow
	Trades    []view.TradeRow

	KPIs    view.KPIs
	WinLoss view.WinLoss
	Profit  profit.Series

	Managed  []view.ManagedPositionRow
	Balances []view.BalanceRow

	Updated map[scheduler.Resource]time.Time

	loc *time.Location
}

// NewState loc 为成交时间的展示时区（nil 使用本地时区）
func NewState(loc *time.Location) *State {
	if loc == nil {
		loc = time.Local
	}
	return &State{
		Indicator:   view.Connecting,
		Controls:    view.ControlsFor(false),
		USDTBalance: "-",
		TotalValue:  "-",
		KPIs:        view.EmptyKPIs,
		WinLoss:     view.WinLossFor(domain.Statistics{}),
		Updated:     make(map[scheduler.Resource]time.Time),
		loc:         loc,
	}
}

// ApplyStatus 状态轮询结果
func (s *State) ApplyStatus(st domain.BotStatus) {
	s.Indicator = view.StatusIndicator(st)
	s.Controls = view.ControlsFor(st.IsRunning)
	s.Strategy = st.Strategy
	if st.USDTBalance != nil {
		s.USDTBalance = view.Fixed(*st.USDTBalance, 2)
	}
	if st.TotalValue != nil {
		s.TotalValue = view.Fixed(*st.TotalValue, 2)
	}
	s.Positions = view.PositionRows(st.Positions)
	s.Trades = view.TradeRows(st.RecentTrades, s.loc)
}

// ApplyStatistics 统计轮询结果
func (s *State) ApplyStatistics(snap StatisticsSnapshot) {
	s.KPIs = view.KPIsFor(snap.Stats)
	s.WinLoss = view.WinLossFor(snap.Stats)
	if snap.Series != nil {
		s.Profit = *snap.Series
	}
}

// ApplyPositions 仓位管理表
func (s *State) ApplyPositions(positions []domain.Position) {
	s.Managed = view.ManagedPositionRows(positions)
}

// ApplyBalances 只显示非零资产
func (s *State) ApplyBalances(balances []domain.AssetBalance) {
	nonZero := make([]domain.AssetBalance, 0, len(balances))
	for _, b := range balances {
		if !b.Total().IsZero() {
			nonZero = append(nonZero, b)
		}
	}
	s.Balances = view.BalanceRows(nonZero)
}

// ApplyOutcome 命令成功时才切换启停按钮
func (s *State) ApplyOutcome(o Outcome) {
	if o.OK && o.Controls != nil {
		s.Controls = *o.Controls
	}
}

// ApplyEvent 应用调度器事件，返回是否更新了状态
func (s *State) ApplyEvent(ev scheduler.Event) bool {
	if ev.Err != nil {
		stateLog.Errorf("拉取 %s 失败: %v", ev.Resource, ev.Err)
		return false
	}

	switch v := ev.Value.(type) {
	case domain.BotStatus:
		s.ApplyStatus(v)
	case *domain.BotStatus:
		if v == nil {
			return false
		}
		s.ApplyStatus(*v)
	case StatisticsSnapshot:
		s.ApplyStatistics(v)
	case []domain.Position:
		s.ApplyPositions(v)
	case []domain.AssetBalance:
		s.ApplyBalances(v)
	default:
		stateLog.Warnf("未知的 %s 结果类型: %T", ev.Resource, ev.Value)
		return false
	}
	s.Updated[ev.Resource] = ev.At
	return true
}
