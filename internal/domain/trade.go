package domain

import (
	"encoding/json"
	"strings"
)

// Action 交易方向
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Valid 是否为已知方向
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// UnmarshalJSON 大小写不敏感（后端可能返回 "BUY"/"SELL"）
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = Action(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// Trade 成交记录（来自 /api/status 的 recent_trades）
type Trade struct {
	Timestamp Timestamp `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	// Profit 为 nil 表示开仓类成交（没有已实现盈亏）
	Profit   *float64 `json:"profit"`
	TestMode bool     `json:"test_mode,omitempty"`
}

// HasProfit 是否带已实现盈亏
func (t Trade) HasProfit() bool {
	return t.Profit != nil
}

// Volume 成交额
func (t Trade) Volume() float64 {
	return t.Price * t.Quantity
}
