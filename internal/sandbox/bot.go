package sandbox

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TaraJura/trade-bot/internal/domain"
)

const (
	msgNotInitialized   = "Bot not initialized"
	msgAlreadyRunning   = "Bot is already running"
	msgNotRunning       = "Bot is not running"
	msgPositionNotFound = "Position not found"
	msgMissingFields    = "Missing required fields"
	msgInvalidSymbol    = "Invalid symbol"

	// recentTradesLimit 状态里返回的最近成交条数
	recentTradesLimit = 10
	// DefaultBalance 模拟账户初始 USDT
	DefaultBalance = 10000.0
)

type position struct {
	quantity   float64
	entryPrice float64
	entryTime  time.Time
	stopLoss   *float64
	takeProfit *float64
}

// Bot 内存中的模拟机器人：只维护运行状态、持仓和成交，不含任何策略
//
// 第一次 Start 之前处于未初始化状态，与真实后端一致。
type Bot struct {
	mu sync.Mutex

	prices *PriceTable
	now    func() time.Time

	initialized bool
	running     bool
	testMode    bool
	strategy    string
	symbol      string
	interval    string

	balance   float64
	config    domain.BotConfig
	positions map[string]*position
	trades    []domain.Trade
}

// NewBot 创建未初始化的模拟机器人
func NewBot(prices *PriceTable) *Bot {
	return &Bot{
		prices:    prices,
		now:       time.Now,
		balance:   DefaultBalance,
		config:    domain.DefaultBotConfig(),
		positions: make(map[string]*position),
	}
}

// Start 启动；首次调用时完成初始化
func (b *Bot) Start(req domain.StartRequest) domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !validStrategy(req.Strategy) {
		return fail(fmt.Sprintf("Unknown strategy: %s", req.Strategy))
	}
	if !b.prices.Has(req.Symbol) {
		return fail(msgInvalidSymbol)
	}
	if b.running {
		return fail(msgAlreadyRunning)
	}
	if !b.initialized {
		b.initialized = true
		b.strategy = req.Strategy
		b.testMode = req.TestMode
	}
	b.symbol = req.Symbol
	b.interval = req.Interval
	b.running = true
	return ok("Bot started successfully")
}

// Stop 停止
func (b *Bot) Stop() domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || !b.running {
		return fail(msgNotRunning)
	}
	b.running = false
	return ok("Bot stopped successfully")
}

// Status GET /api/status
func (b *Bot) Status() domain.BotStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return domain.BotStatus{Message: msgNotInitialized}
	}

	positions := b.positionViewsLocked(false)
	total := b.balance
	for _, p := range positions {
		total += p.Value
	}
	balance := b.balance

	return domain.BotStatus{
		IsRunning:    b.running,
		TestMode:     b.testMode,
		Strategy:     b.strategy,
		USDTBalance:  &balance,
		TotalValue:   &total,
		Positions:    positions,
		RecentTrades: b.recentTradesLocked(),
	}
}

// Positions GET /api/positions（带止损/止盈）
func (b *Bot) Positions() []domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return []domain.Position{}
	}
	return b.positionViewsLocked(true)
}

func (b *Bot) positionViewsLocked(withRisk bool) []domain.Position {
	symbols := make([]string, 0, len(b.positions))
	for s := range b.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	out := make([]domain.Position, 0, len(symbols))
	for _, s := range symbols {
		p := b.positions[s]
		current, found := b.prices.Price(s)
		if !found {
			continue
		}
		v := domain.Position{
			Symbol:        s,
			Quantity:      p.quantity,
			EntryPrice:    p.entryPrice,
			CurrentPrice:  current,
			Value:         p.quantity * current,
			PnL:           domain.CalcPnL(p.entryPrice, current, p.quantity),
			PnLPercentage: domain.CalcPnLPercentage(p.entryPrice, current),
		}
		if withRisk {
			v.StopLoss = p.stopLoss
			v.TakeProfit = p.takeProfit
			v.EntryTime = p.entryTime.Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out
}

func (b *Bot) recentTradesLocked() []domain.Trade {
	start := len(b.trades) - recentTradesLimit
	if start < 0 {
		start = 0
	}
	return append([]domain.Trade{}, b.trades[start:]...)
}

// CreatePosition 手动建仓，止损/止盈按当前配置计算
func (b *Bot) CreatePosition(req domain.CreatePositionRequest) domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return fail(msgNotInitialized)
	}
	if req.Symbol == "" || req.Quantity == 0 || req.EntryPrice == 0 {
		return fail(msgMissingFields)
	}
	if req.Quantity < 0 || req.EntryPrice < 0 {
		return fail("Quantity and entry price must be positive")
	}
	if !b.prices.Has(req.Symbol) {
		return fail(msgInvalidSymbol)
	}

	sl := req.EntryPrice * (1 - b.config.StopLossPercentage)
	tp := req.EntryPrice * (1 + b.config.TakeProfitPercentage)
	b.positions[req.Symbol] = &position{
		quantity:   req.Quantity,
		entryPrice: req.EntryPrice,
		entryTime:  b.now(),
		stopLoss:   &sl,
		takeProfit: &tp,
	}
	b.recordLocked(req.Symbol, domain.ActionBuy, req.EntryPrice, req.Quantity, nil)
	return ok(fmt.Sprintf("Position created for %s", req.Symbol))
}

// UpdatePosition 修改止损/止盈；null 表示清除
func (b *Bot) UpdatePosition(symbol string, req domain.UpdatePositionRequest) domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return fail(msgNotInitialized)
	}
	p, found := b.positions[symbol]
	if !found {
		return fail(msgPositionNotFound)
	}
	p.stopLoss = req.StopLoss
	p.takeProfit = req.TakeProfit
	return ok("Position updated")
}

// ClosePosition 按当前价全部卖出并记录收益
func (b *Bot) ClosePosition(symbol string) domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return fail(msgNotInitialized)
	}
	p, found := b.positions[symbol]
	if !found {
		return fail(msgPositionNotFound)
	}
	price, found := b.prices.Price(symbol)
	if !found {
		return fail(msgInvalidSymbol)
	}

	profit := domain.CalcPnL(p.entryPrice, price, p.quantity)
	delete(b.positions, symbol)
	b.balance += p.quantity * price
	b.recordLocked(symbol, domain.ActionSell, price, p.quantity, &profit)
	return ok(fmt.Sprintf("Position closed for %s", symbol))
}

func (b *Bot) recordLocked(symbol string, action domain.Action, price, qty float64, profit *float64) {
	b.trades = append(b.trades, domain.Trade{
		Timestamp: domain.NewTimestampMillis(b.now().UnixMilli()),
		Symbol:    symbol,
		Action:    action,
		Price:     price,
		Quantity:  qty,
		Profit:    profit,
		TestMode:  b.testMode,
	})
}

// Config GET /api/config
func (b *Bot) Config() domain.BotConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

// SaveConfig POST /api/config
func (b *Bot) SaveConfig(req domain.ConfigRequest) domain.CommandResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return fail(msgNotInitialized)
	}
	if req.MaxPositionSize <= 0 || req.MaxPositionSize > 1 {
		return fail("max_position_size must be in (0, 1]")
	}
	if req.StopLossPercentage < 0 || req.StopLossPercentage >= 1 || req.TakeProfitPercentage < 0 {
		return fail("stop_loss_percentage and take_profit_percentage must be fractions")
	}
	b.config.MaxPositionSize = req.MaxPositionSize
	b.config.StopLossPercentage = req.StopLossPercentage
	b.config.TakeProfitPercentage = req.TakeProfitPercentage
	return ok("Configuration updated")
}

// Balances 非零资产余额；持仓按数量计入对应币种
func (b *Bot) Balances() []domain.AssetBalance {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []domain.AssetBalance{}
	if b.balance > 0 {
		out = append(out, domain.AssetBalance{Asset: "USDT", Free: decimal.NewFromFloat(b.balance), Locked: decimal.Zero})
	}
	symbols := make([]string, 0, len(b.positions))
	for s := range b.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		out = append(out, domain.AssetBalance{
			Asset:  baseAsset(s),
			Free:   decimal.NewFromFloat(b.positions[s].quantity),
			Locked: decimal.Zero,
		})
	}
	return out
}

// Statistics 只统计带收益的成交；total_volume 统计全部成交
func (b *Bot) Statistics() domain.Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return domain.Statistics{}
	}

	var stats domain.Statistics
	stats.ActivePositions = len(b.positions)

	volume := decimal.Zero
	total := decimal.Zero
	first := true
	counted := 0
	for _, t := range b.trades {
		volume = volume.Add(decimal.NewFromFloat(t.Volume()))
		if !t.HasProfit() {
			continue
		}
		p := *t.Profit
		counted++
		total = total.Add(decimal.NewFromFloat(p))
		switch {
		case p > 0:
			stats.WinningTrades++
		case p < 0:
			stats.LosingTrades++
		}
		if first || p > stats.BestTrade {
			stats.BestTrade = p
		}
		if first || p < stats.WorstTrade {
			stats.WorstTrade = p
		}
		first = false
	}
	stats.TotalVolume, _ = volume.Float64()

	if counted == 0 {
		stats.TotalTrades = len(b.trades)
		return stats
	}
	stats.TotalTrades = counted
	stats.TotalProfit, _ = total.Float64()
	stats.AverageProfit, _ = total.Div(decimal.NewFromInt(int64(counted))).Float64()
	stats.WinRate = float64(stats.WinningTrades) / float64(counted) * 100
	return stats
}

func baseAsset(symbol string) string {
	if len(symbol) > 4 && symbol[len(symbol)-4:] == "USDT" {
		return symbol[:len(symbol)-4]
	}
	return symbol
}

func validStrategy(name string) bool {
	for _, s := range domain.Strategies {
		if s == name {
			return true
		}
	}
	return false
}

func ok(msg string) domain.CommandResult   { return domain.CommandResult{Success: true, Message: msg} }
func fail(msg string) domain.CommandResult { return domain.CommandResult{Success: false, Message: msg} }
