package cli

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultBannerTitle   = "Welcome to CVESummary"
	DefaultBannerMessage = "CVE record summaries from the cvelistV5 feed"
)

// Banner 欢迎横幅，空参数使用默认文案
func Banner(title, message string, theme Theme) string {
	if title == "" {
		title = DefaultBannerTitle
	}
	if message == "" {
		message = DefaultBannerMessage
	}

	p := theme.palette()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	messageStyle := lipgloss.NewStyle().Foreground(p.muted)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 2)

	return box.Render(titleStyle.Render(title)+"\n"+messageStyle.Render(message)) + "\n"
}
