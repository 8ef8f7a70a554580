package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/TaraJura/trade-bot/internal/notify"
	"github.com/TaraJura/trade-bot/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 2)

	successNoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("46")).Padding(0, 1)
	errorNoticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
)

// classStyle 把 view 层的 class 映射成颜色
func classStyle(class string) lipgloss.Style {
	switch class {
	case view.ClassPositive, view.ClassOnline:
		return positiveStyle
	case view.ClassNegative, view.ClassOffline:
		return negativeStyle
	default:
		return lipgloss.NewStyle()
	}
}

func noticeStyle(kind notify.Kind) lipgloss.Style {
	if kind == notify.KindSuccess {
		return successNoticeStyle
	}
	return errorNoticeStyle
}
