package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeToggle(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeLight, ThemeLight.Toggle().Toggle())
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme("DARK")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	theme, err = ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	_, err = ParseTheme("solarized")
	assert.Error(t, err)
}

func TestBannerDefaults(t *testing.T) {
	out := Banner("", "", ThemeLight)
	assert.Contains(t, out, DefaultBannerTitle)
	assert.Contains(t, out, DefaultBannerMessage)

	out = Banner("Custom Title", "Custom message", ThemeDark)
	assert.Contains(t, out, "Custom Title")
	assert.Contains(t, out, "Custom message")
	assert.NotContains(t, out, DefaultBannerTitle)
}
