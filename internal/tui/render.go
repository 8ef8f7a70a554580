package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/TaraJura/trade-bot/internal/dashboard"
	"github.com/TaraJura/trade-bot/internal/modal"
	"github.com/TaraJura/trade-bot/internal/view"
)

type cell struct {
	text  string
	class string
}

func plain(text string) cell { return cell{text: text} }

// renderTable 等宽列表格；selected<0 表示不高亮
func renderTable(headers []string, widths []int, rows [][]cell, empty string, selected int) string {
	var lines []string
	var head strings.Builder
	for i, h := range headers {
		head.WriteString(fmt.Sprintf("%-*s", widths[i], h))
	}
	lines = append(lines, mutedStyle.Render(strings.TrimRight(head.String(), " ")))

	if len(rows) == 0 {
		lines = append(lines, mutedStyle.Render(empty))
		return strings.Join(lines, "\n")
	}
	for r, row := range rows {
		var b strings.Builder
		for i, c := range row {
			text := fmt.Sprintf("%-*s", widths[i], c.text)
			if c.class != "" {
				text = classStyle(c.class).Render(text)
			}
			b.WriteString(text)
		}
		line := b.String()
		if r == selected {
			line = selectedStyle.Render("▶ ") + line
		} else if selected >= 0 {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func section(title, body string) string {
	return titleStyle.Render(title) + "\n" + body
}

func (m *Model) View() string {
	var parts []string
	parts = append(parts, m.renderHeader())
	parts = append(parts, m.renderTabs())

	var body string
	switch {
	case m.confirm != "":
		body = m.renderConfirm()
	case m.modal.IsOpen():
		body = m.renderModal()
	case m.tab == tabControl:
		body = m.renderControl()
	default:
		body = m.renderDashboard()
	}
	parts = append(parts, body)

	if notices := m.renderNotices(); notices != "" {
		parts = append(parts, notices)
	}
	parts = append(parts, mutedStyle.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	ind := m.state.Indicator
	title := fmt.Sprintf("Trading Bot | %s | %s",
		m.opts.BaseURL,
		time.Now().Format("15:04:05"))
	return headerStyle.Render(title) + " " + classStyle(ind.Class).Render("● "+ind.Text)
}

func (m *Model) renderTabs() string {
	names := []string{"Control", "Dashboard"}
	var out []string
	for i, n := range names {
		if tab(i) == m.tab {
			out = append(out, activeTabStyle.Render(n))
		} else {
			out = append(out, inactiveTabStyle.Render(n))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m *Model) panelWidth() int {
	w := m.width - 4
	if w < 60 {
		w = 60
	}
	return w
}

func (m *Model) renderControl() string {
	half := m.panelWidth()/2 - 1
	left := panelStyle.Width(half).Render(m.renderControlForm())
	right := panelStyle.Width(half).Render(m.renderStatusPanel())
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	positions := renderTable(
		[]string{"Symbol", "Quantity", "Entry", "Current", "PnL", "PnL %"},
		[]int{12, 14, 14, 14, 12, 10},
		positionCells(m.state.Positions),
		view.NoPositions, -1)
	trades := renderTable(
		[]string{"Time", "Symbol", "Action", "Price", "Quantity", "Profit"},
		[]int{21, 12, 8, 14, 14, 12},
		tradeCells(m.state.Trades),
		view.NoTrades, -1)

	bottom := panelStyle.Width(m.panelWidth()).Render(
		section("Open Positions", positions) + "\n\n" + section("Recent Trades", trades))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m *Model) renderControlForm() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Bot Control"))
	for i, f := range m.control.fields {
		if f.key == keyMaxPosition {
			lines = append(lines, "", titleStyle.Render("Configuration"))
		}
		lines = append(lines, m.renderControlField(f, i == m.control.focus))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderControlField(f formField, focused bool) string {
	prefix := "  "
	if focused {
		prefix = focusStyle.Render("› ")
	}

	switch f.kind {
	case kindButton:
		label := "[ " + f.label + " ]"
		if !m.buttonEnabled(f.key) {
			return prefix + disabledStyle.Render(label)
		}
		if focused {
			return prefix + focusStyle.Render(label)
		}
		return prefix + label
	case kindToggle:
		box := "[ ]"
		if f.checked {
			box = "[x]"
		}
		return prefix + fmt.Sprintf("%-18s %s", f.label, box)
	case kindChoice:
		value := f.value
		if f.key == keySymbol && len(f.choices) > 0 {
			value = view.DisplaySymbol(value)
		}
		if len(f.choices) > 0 {
			value = "‹ " + value + " ›"
		}
		return prefix + fmt.Sprintf("%-18s %s", f.label, value)
	default:
		return prefix + fmt.Sprintf("%-18s %s", f.label, f.value+cursor(focused))
	}
}

func cursor(focused bool) string {
	if focused {
		return "▏"
	}
	return ""
}

func (m *Model) buttonEnabled(key string) bool {
	if m.busy {
		return false
	}
	switch key {
	case keyStart:
		return m.state.Controls.StartEnabled
	case keyStop:
		return m.state.Controls.StopEnabled
	}
	return true
}

func (m *Model) renderStatusPanel() string {
	s := m.state
	lines := []string{
		titleStyle.Render("Status"),
		fmt.Sprintf("%-14s %s", "Bot", classStyle(s.Indicator.Class).Render(s.Indicator.Text)),
		fmt.Sprintf("%-14s %s", "Strategy", orDash(s.Strategy)),
		fmt.Sprintf("%-14s %s", "USDT Balance", s.USDTBalance),
		fmt.Sprintf("%-14s %s", "Total Value", s.TotalValue),
	}
	if len(s.Balances) > 0 {
		lines = append(lines, "", titleStyle.Render("Balances"))
		for _, b := range s.Balances {
			lines = append(lines, fmt.Sprintf("%-8s free %-16s locked %s", b.Asset, b.Free, b.Locked))
		}
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m *Model) renderDashboard() string {
	width := m.panelWidth()
	half := width/2 - 1
	k := m.state.KPIs
	kpis := strings.Join([]string{
		fmt.Sprintf("%-18s %-12s %-18s %s", "Total Trades", k.TotalTrades, "Win Rate", k.WinRate),
		fmt.Sprintf("%-18s %-12s %-18s %s", "Total Profit", k.TotalProfit, "Active Positions", k.ActivePositions),
		fmt.Sprintf("%-18s %-12s %-18s %s", "Best Trade", k.BestTrade, "Worst Trade", k.WorstTrade),
		fmt.Sprintf("%-18s %-12s %-18s %s", "Average Profit", k.AverageProfit, "Total Volume", k.TotalVolume),
	}, "\n")

	left := panelStyle.Width(half).Render(section("Statistics", kpis))
	right := panelStyle.Width(half).Render(
		section("Cumulative Profit (30d)", renderProfitChart(m.state.Profit)) + "\n\n" +
			section("Win / Loss", renderWinLoss(m.state.WinLoss, half-4)))
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	managed := renderTable(
		[]string{"Symbol", "Quantity", "Entry", "Current", "PnL", "Stop Loss", "Take Profit"},
		[]int{12, 14, 13, 13, 24, 13, 13},
		managedCells(m.state.Managed),
		view.NoPositions, m.selected)
	bottom := panelStyle.Width(width).Render(section("Positions", managed))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m *Model) renderModal() string {
	var lines []string
	lines = append(lines, titleStyle.Render(m.modal.Title()))
	for _, id := range modal.Fields() {
		f := m.modal.Field(id)
		if !f.Visible {
			continue
		}
		focused := id == m.modal.Focus()
		prefix := "  "
		if focused {
			prefix = focusStyle.Render("› ")
		}
		value := f.Value
		if id == modal.FieldSymbol && m.modal.Mode() == modal.ModeAdd {
			value = "‹ " + value + " ›"
		}
		line := fmt.Sprintf("%-14s %s", id.Label(), value+cursor(focused && f.Enabled))
		if !f.Enabled {
			line = mutedStyle.Render(line)
		}
		lines = append(lines, prefix+line)
	}
	box := modalStyle.Render(strings.Join(lines, "\n"))
	return m.center(box)
}

func (m *Model) renderConfirm() string {
	prompt := dashboard.ConfirmClosePrompt(m.confirm) + "\n\n" + mutedStyle.Render("y: confirm  n: cancel")
	return m.center(modalStyle.Render(prompt))
}

func (m *Model) center(s string) string {
	if m.width <= 0 {
		return s
	}
	h := m.height - 6
	if h < lipgloss.Height(s) {
		h = lipgloss.Height(s)
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}

func (m *Model) renderNotices() string {
	active := m.notices.Active()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, n := range active {
		lines = append(lines, noticeStyle(n.Kind).Render(n.Message))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) helpLine() string {
	switch {
	case m.confirm != "":
		return "y confirm • n/esc cancel"
	case m.modal.IsOpen():
		return "tab/↑↓ field • ←→ symbol • enter submit • esc close"
	case m.tab == tabControl:
		return "↑↓ field • ←→ change • enter activate • tab dashboard • r refresh • q quit"
	default:
		return "↑↓ select • a add • e edit • x close position • tab control • r refresh • q quit"
	}
}

func positionCells(rows []view.PositionRow) [][]cell {
	out := make([][]cell, 0, len(rows))
	for _, r := range rows {
		out = append(out, []cell{
			plain(view.DisplaySymbol(r.Symbol)),
			plain(r.Quantity),
			plain(r.EntryPrice),
			plain(r.CurrentPrice),
			{text: r.PnL, class: r.PnLClass},
			{text: r.PnLPercent, class: r.PnLClass},
		})
	}
	return out
}

func tradeCells(rows []view.TradeRow) [][]cell {
	out := make([][]cell, 0, len(rows))
	for _, r := range rows {
		out = append(out, []cell{
			plain(r.Time),
			plain(view.DisplaySymbol(r.Symbol)),
			plain(r.Action),
			plain(r.Price),
			plain(r.Quantity),
			{text: r.Profit, class: r.ProfitClass},
		})
	}
	return out
}

func managedCells(rows []view.ManagedPositionRow) [][]cell {
	out := make([][]cell, 0, len(rows))
	for _, r := range rows {
		out = append(out, []cell{
			plain(view.DisplaySymbol(r.Symbol)),
			plain(r.Quantity),
			plain(r.EntryPrice),
			plain(r.CurrentPrice),
			{text: r.PnL, class: r.PnLClass},
			plain(r.StopLoss),
			plain(r.TakeProfit),
		})
	}
	return out
}
