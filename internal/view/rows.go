package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/TaraJura/trade-bot/internal/domain"
)

// 空表提示
const (
	NoPositions = "No open positions"
	NoTrades    = "No trades yet"
	NoBalances  = "No balances"
)

// TimeLayout 成交时间展示格式
const TimeLayout = "2006-01-02 15:04:05"

// Indicator 连接状态指示
type Indicator struct {
	Text  string
	Class string
}

// Connecting 首次拿到状态前的指示
var Connecting = Indicator{Text: "Connecting...", Class: ClassOffline}

// StatusIndicator 根据运行状态生成指示文字
func StatusIndicator(s domain.BotStatus) Indicator {
	if !s.IsRunning {
		return Indicator{Text: "Offline", Class: ClassOffline}
	}
	if s.TestMode {
		return Indicator{Text: "Running (Test Mode)", Class: ClassOnline}
	}
	return Indicator{Text: "Running (Live)", Class: ClassOnline}
}

// Controls 启停按钮可用状态，总是互斥
type Controls struct {
	StartEnabled bool
	StopEnabled  bool
}

// ControlsFor 运行中只能停，停止时只能启动
func ControlsFor(running bool) Controls {
	return Controls{StartEnabled: !running, StopEnabled: running}
}

// PositionRow 状态页的持仓行
type PositionRow struct {
	Symbol       string
	Quantity     string
	EntryPrice   string
	CurrentPrice string
	PnL          string
	PnLPercent   string
	PnLClass     string
}

// PositionRows 整表替换
func PositionRows(positions []domain.Position) []PositionRow {
	rows := make([]PositionRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, PositionRow{
			Symbol:       p.Symbol,
			Quantity:     Quantity(p.Quantity),
			EntryPrice:   Money(p.EntryPrice),
			CurrentPrice: Money(p.CurrentPrice),
			PnL:          Money(p.PnL),
			PnLPercent:   Fixed(p.PnLPercentage, 2) + "%",
			PnLClass:     PnLClass(p.PnL),
		})
	}
	return rows
}

// ManagedPositionRow 仓位管理页的行，带编辑所需的原始值
type ManagedPositionRow struct {
	Symbol       string
	Quantity     string
	EntryPrice   string
	CurrentPrice string
	PnL          string
	PnLClass     string
	StopLoss     string
	TakeProfit   string

	RawStopLoss   *float64
	RawTakeProfit *float64
}

// ManagedPositionRows 仓位管理表
func ManagedPositionRows(positions []domain.Position) []ManagedPositionRow {
	rows := make([]ManagedPositionRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, ManagedPositionRow{
			Symbol:        p.Symbol,
			Quantity:      Quantity(p.Quantity),
			EntryPrice:    Money(p.EntryPrice),
			CurrentPrice:  Money(p.CurrentPrice),
			PnL:           Money(p.PnL) + " (" + Fixed(p.PnLPercentage, 2) + "%)",
			PnLClass:      PnLClass(p.PnL),
			StopLoss:      MoneyPtr(p.StopLoss),
			TakeProfit:    MoneyPtr(p.TakeProfit),
			RawStopLoss:   p.StopLoss,
			RawTakeProfit: p.TakeProfit,
		})
	}
	return rows
}

// TradeRow 最近成交行
type TradeRow struct {
	Time        string
	Symbol      string
	Action      string
	Price       string
	Quantity    string
	Profit      string
	ProfitClass string
}

// TradeRows 整表替换，loc 为展示时区
func TradeRows(trades []domain.Trade, loc *time.Location) []TradeRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]TradeRow, 0, len(trades))
	for _, t := range trades {
		row := TradeRow{
			Time:     "-",
			Symbol:   t.Symbol,
			Action:   strings.ToUpper(string(t.Action)),
			Price:    Money(t.Price),
			Quantity: Quantity(t.Quantity),
			Profit:   "-",
		}
		if !t.Timestamp.IsZero() {
			row.Time = t.Timestamp.In(loc).Format(TimeLayout)
		}
		if t.Profit != nil {
			row.Profit = Money(*t.Profit)
			row.ProfitClass = PnLClass(*t.Profit)
		}
		rows = append(rows, row)
	}
	return rows
}

// BalanceRow 资产余额行
type BalanceRow struct {
	Asset  string
	Free   string
	Locked string
}

// BalanceRows 资产余额表（保留后端精度）
func BalanceRows(balances []domain.AssetBalance) []BalanceRow {
	rows := make([]BalanceRow, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, BalanceRow{
			Asset:  b.Asset,
			Free:   b.Free.String(),
			Locked: b.Locked.String(),
		})
	}
	return rows
}

// KPIs 统计面板的 8 个指标
type KPIs struct {
	TotalTrades     string
	WinRate         string
	TotalProfit     string
	ActivePositions string
	BestTrade       string
	WorstTrade      string
	AverageProfit   string
	TotalVolume     string
}

// EmptyKPIs 首次加载前的占位
var EmptyKPIs = KPIs{
	TotalTrades:     "0",
	WinRate:         "0.0%",
	TotalProfit:     "$0.00",
	ActivePositions: "0",
	BestTrade:       "$0.00",
	WorstTrade:      "$0.00",
	AverageProfit:   "$0.00",
	TotalVolume:     "$0.00",
}

// KPIsFor 统计指标格式化
func KPIsFor(s domain.Statistics) KPIs {
	return KPIs{
		TotalTrades:     strconv.Itoa(s.TotalTrades),
		WinRate:         Percent(s.WinRate),
		TotalProfit:     Money(s.TotalProfit),
		ActivePositions: strconv.Itoa(s.ActivePositions),
		BestTrade:       Money(s.BestTrade),
		WorstTrade:      Money(s.WorstTrade),
		AverageProfit:   Money(s.AverageProfit),
		TotalVolume:     Money(s.TotalVolume),
	}
}

// WinLoss 胜负环形图的两段数据
type WinLoss struct {
	Labels [2]string
	Values [2]int
}

// WinLossFor [winning, losing]
func WinLossFor(s domain.Statistics) WinLoss {
	return WinLoss{
		Labels: [2]string{"Winning Trades", "Losing Trades"},
		Values: [2]int{s.WinningTrades, s.LosingTrades},
	}
}

// Total 两段之和
func (w WinLoss) Total() int {
	return w.Values[0] + w.Values[1]
}
