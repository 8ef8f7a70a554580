package domain

import "github.com/shopspring/decimal"

// BotStatus GET /api/status
type BotStatus struct {
	IsRunning bool   `json:"is_running"`
	TestMode  bool   `json:"test_mode"`
	Strategy  string `json:"strategy,omitempty"`

	// 余额字段可能缺失（例如后端尚未初始化 bot）
	USDTBalance *float64 `json:"usdt_balance,omitempty"`
	TotalValue  *float64 `json:"total_value,omitempty"`

	Positions    []Position `json:"positions"`
	RecentTrades []Trade    `json:"recent_trades"`
	Message      string     `json:"message,omitempty"`
}

// Statistics GET /api/statistics
type Statistics struct {
	TotalTrades     int     `json:"total_trades"`
	WinRate         float64 `json:"win_rate"`
	TotalProfit     float64 `json:"total_profit"`
	ActivePositions int     `json:"active_positions"`
	BestTrade       float64 `json:"best_trade"`
	WorstTrade      float64 `json:"worst_trade"`
	AverageProfit   float64 `json:"average_profit"`
	TotalVolume     float64 `json:"total_volume"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
}

// SymbolsResponse GET /api/symbols
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// AssetBalance 单个资产余额（free/locked 可能是字符串也可能是数字）
type AssetBalance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Total free + locked
func (b AssetBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// BalancesResponse GET /api/balance
type BalancesResponse struct {
	Balances []AssetBalance `json:"balances"`
}
