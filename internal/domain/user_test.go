package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", User{Name: "Ada", Email: "ada@example.com"}.DisplayName())
	assert.Equal(t, "ada@example.com", User{Email: "ada@example.com"}.DisplayName())
}

func TestSession_IsExpired(t *testing.T) {
	expiry := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: expiry}

	assert.False(t, s.IsExpired(expiry.Add(-time.Nanosecond)))
	assert.True(t, s.IsExpired(expiry))
	assert.True(t, s.IsExpired(expiry.Add(time.Hour)))
}

func TestInteractionTitle(t *testing.T) {
	short := "What should I work on first?"
	assert.Equal(t, short, InteractionTitle(short))

	exact := strings.Repeat("a", 50)
	assert.Equal(t, exact, InteractionTitle(exact))

	long := strings.Repeat("b", 51)
	assert.Equal(t, strings.Repeat("b", 50)+"...", InteractionTitle(long))

	runes := strings.Repeat("é", 60)
	title := InteractionTitle(runes)
	assert.Equal(t, strings.Repeat("é", 50)+"...", title)
}

func TestParseSettings(t *testing.T) {
	theme, err := ParseTheme("Dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("solarized")
	assert.Error(t, err)

	style, err := ParseAIResponseStyle("detailed")
	require.NoError(t, err)
	assert.Equal(t, AIStyleDetailed, style)

	_, err = ParseAIResponseStyle("verbose")
	assert.Error(t, err)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("u1")
	assert.Equal(t, Settings{UserID: "u1", Theme: ThemeLight, AIResponseStyle: AIStyleConcise, Language: "en"}, s)
}
