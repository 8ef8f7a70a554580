package domain

// Position 持仓视图（每次轮询整体替换）
type Position struct {
	Symbol        string   `json:"symbol"`
	Quantity      float64  `json:"quantity"`
	EntryPrice    float64  `json:"entry_price"`
	CurrentPrice  float64  `json:"current_price"`
	Value         float64  `json:"value,omitempty"`
	PnL           float64  `json:"pnl"`
	PnLPercentage float64  `json:"pnl_percentage"`
	StopLoss      *float64 `json:"stop_loss,omitempty"`
	TakeProfit    *float64 `json:"take_profit,omitempty"`
	EntryTime     string   `json:"entry_time,omitempty"`
}

// PositionsResponse GET /api/positions
type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

// CreatePositionRequest POST /api/positions
type CreatePositionRequest struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
}

// UpdatePositionRequest PUT /api/positions/{symbol}
// 留空的止损/止盈以 null 发送，表示清除。
type UpdatePositionRequest struct {
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
}

// CalcPnL (current - entry) * quantity
func CalcPnL(entry, current, quantity float64) float64 {
	return (current - entry) * quantity
}

// CalcPnLPercentage 相对入场价的涨跌幅（百分比）
func CalcPnLPercentage(entry, current float64) float64 {
	if entry == 0 {
		return 0
	}
	return (current - entry) / entry * 100
}
