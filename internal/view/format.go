package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 展示用 class，与盈亏正负对应
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
	ClassOnline   = "online"
	ClassOffline  = "offline"
)

// quoteAsset 行情代码统一以 USDT 计价
const quoteAsset = "USDT"

// Fixed 固定小数位（四舍五入，远离零）
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Money "$" + 两位小数，负数形如 "$-5.00"
func Money(v float64) string {
	return "$" + Fixed(v, 2)
}

// MoneyPtr 缺失时返回 "-"
func MoneyPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return Money(*v)
}

// Percent 一位小数 + "%"
func Percent(v float64) string {
	return Fixed(v, 1) + "%"
}

// Quantity 数量保留 6 位
func Quantity(v float64) string {
	return Fixed(v, 6)
}

// PnLClass 盈亏 class，恰好为 0 视为 positive
func PnLClass(pnl float64) string {
	if pnl >= 0 {
		return ClassPositive
	}
	return ClassNegative
}

// DisplaySymbol BTCUSDT -> BTC/USDT，仅用于展示
func DisplaySymbol(symbol string) string {
	if len(symbol) > len(quoteAsset) && strings.HasSuffix(symbol, quoteAsset) {
		return symbol[:len(symbol)-len(quoteAsset)] + "/" + quoteAsset
	}
	return symbol
}

// Number 最短表示，去掉多余的 0
func Number(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// ParseNumber 解析用户输入的数字
func ParseNumber(input string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// PercentToFraction 把用户输入的整数百分比换算成小数："5" -> 0.05
func PercentToFraction(input string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	f, _ := d.Div(decimal.NewFromInt(100)).Float64()
	return f, nil
}

// FractionToPercent 0.05 -> "5"
func FractionToPercent(f float64) string {
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).String()
}
