package cli

import (
	"fmt"
	"strings"

	"CVESummary/internal/summary"

	"github.com/charmbracelet/lipgloss"
)

// Theme 终端配色方案
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("不支持的主题: %s", s)
}

// Toggle 在亮色和暗色之间切换
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	return string(t)
}

type palette struct {
	text   lipgloss.Color
	muted  lipgloss.Color
	accent lipgloss.Color
	border lipgloss.Color
}

func (t Theme) palette() palette {
	if t == ThemeDark {
		return palette{
			text:   lipgloss.Color("252"),
			muted:  lipgloss.Color("243"),
			accent: lipgloss.Color("#69b1ff"),
			border: lipgloss.Color("240"),
		}
	}
	return palette{
		text:   lipgloss.Color("235"),
		muted:  lipgloss.Color("245"),
		accent: lipgloss.Color("#1890ff"),
		border: lipgloss.Color("250"),
	}
}

var severityColors = map[summary.Color]lipgloss.Color{
	summary.ColorRed:    lipgloss.Color("#f5222d"),
	summary.ColorOrange: lipgloss.Color("#fa8c16"),
	summary.ColorGold:   lipgloss.Color("#faad14"),
	summary.ColorGreen:  lipgloss.Color("#52c41a"),
	summary.ColorBlue:   lipgloss.Color("#1677ff"),
}

// severityStyle 严重程度标签样式，默认色使用主题的次要文字色
func (t Theme) severityStyle(c summary.Color) lipgloss.Style {
	color, ok := severityColors[c]
	if !ok {
		color = t.palette().muted
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}
