package domain

// CommandResult 所有写操作的统一应答
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StartRequest POST /api/start
type StartRequest struct {
	Strategy string `json:"strategy"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	TestMode bool   `json:"test_mode"`
}

// ConfigRequest POST /api/config
// 止损/止盈为小数（0.05 表示 5%），不是百分数。
type ConfigRequest struct {
	MaxPositionSize      float64 `json:"max_position_size"`
	StopLossPercentage   float64 `json:"stop_loss_percentage"`
	TakeProfitPercentage float64 `json:"take_profit_percentage"`
}

// BotConfig GET /api/config
type BotConfig struct {
	MaxPositionSize      float64 `json:"max_position_size"`
	StopLossPercentage   float64 `json:"stop_loss_percentage"`
	TakeProfitPercentage float64 `json:"take_profit_percentage"`
	MinOrderAmount       float64 `json:"min_order_amount,omitempty"`
}

// DefaultBotConfig 后端未初始化时返回的默认配置
func DefaultBotConfig() BotConfig {
	return BotConfig{
		MaxPositionSize:      0.1,
		StopLossPercentage:   0.02,
		TakeProfitPercentage: 0.03,
		MinOrderAmount:       10.0,
	}
}

// Strategies 后端支持的策略名
var Strategies = []string{"combined", "sma", "rsi", "bollinger"}

// Intervals 后端支持的 K 线周期
var Intervals = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}
