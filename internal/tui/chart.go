package tui

import (
	"fmt"
	"strings"

	"github.com/TaraJura/trade-bot/internal/profit"
	"github.com/TaraJura/trade-bot/internal/view"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline 把序列压成一行方块字符，等值序列画在中间高度
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// renderProfitChart 30 天累计收益曲线
func renderProfitChart(s profit.Series) string {
	if s.Len() == 0 {
		return mutedStyle.Render("No profit data")
	}
	line := classStyle(view.PnLClass(s.Last())).Render(Sparkline(s.Values))
	axis := fmt.Sprintf("%s … %s  cumulative %s", s.Labels[0], s.Labels[len(s.Labels)-1], view.Money(s.Last()))
	return line + "\n" + mutedStyle.Render(axis)
}

// WinLossBar 胜负比例条，width 为条的字符宽度
func WinLossBar(wl view.WinLoss, width int) string {
	if width < 2 {
		width = 2
	}
	total := wl.Total()
	if total == 0 {
		return mutedStyle.Render(strings.Repeat("░", width))
	}
	win := wl.Values[0] * width / total
	if wl.Values[0] > 0 && win == 0 {
		win = 1
	}
	if wl.Values[1] > 0 && win == width {
		win = width - 1
	}
	return positiveStyle.Render(strings.Repeat("█", win)) + negativeStyle.Render(strings.Repeat("█", width-win))
}

func renderWinLoss(wl view.WinLoss, width int) string {
	legend := fmt.Sprintf("%s: %d  %s: %d", wl.Labels[0], wl.Values[0], wl.Labels[1], wl.Values[1])
	return WinLossBar(wl, width) + "\n" + mutedStyle.Render(legend)
}
