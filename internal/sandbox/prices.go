package sandbox

import (
	"math/rand"
	"sort"
	"sync"
)

// DefaultPrices 模拟行情的初始价格
var DefaultPrices = map[string]float64{
	"BTCUSDT":  65000,
	"ETHUSDT":  3200,
	"BNBUSDT":  580,
	"SOLUSDT":  150,
	"XRPUSDT":  0.52,
	"ADAUSDT":  0.45,
	"DOGEUSDT": 0.12,
}

// PriceTable 随机游走的价格表，代替交易所行情
type PriceTable struct {
	mu     sync.Mutex
	prices map[string]float64
	jitter float64
	rnd    *rand.Rand
}

// NewPriceTable jitter 为单次读取的最大相对波动（0.005 即 ±0.5%），0 表示价格不动
func NewPriceTable(initial map[string]float64, jitter float64, seed int64) *PriceTable {
	prices := make(map[string]float64, len(initial))
	for k, v := range initial {
		prices[k] = v
	}
	return &PriceTable{
		prices: prices,
		jitter: jitter,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Symbols 全部交易对（排序）
func (t *PriceTable) Symbols() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.prices))
	for s := range t.prices {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Has 交易对是否存在
func (t *PriceTable) Has(symbol string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.prices[symbol]
	return ok
}

// Price 读取当前价并推进一步随机游走
func (t *PriceTable) Price(symbol string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.prices[symbol]
	if !ok {
		return 0, false
	}
	if t.jitter > 0 {
		p *= 1 + (t.rnd.Float64()*2-1)*t.jitter
		t.prices[symbol] = p
	}
	return p, true
}

// Set 直接设置价格（测试用）
func (t *PriceTable) Set(symbol string, price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prices[symbol] = price
}
