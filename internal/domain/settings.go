package domain

import (
	"fmt"
	"strings"
	"time"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme parses a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("invalid theme %q: must be light or dark", s)
}

// AIResponseStyle controls how verbose assistant replies are.
type AIResponseStyle string

const (
	AIStyleConcise  AIResponseStyle = "concise"
	AIStyleDetailed AIResponseStyle = "detailed"
)

// ParseAIResponseStyle parses an assistant style name.
func ParseAIResponseStyle(s string) (AIResponseStyle, error) {
	switch st := AIResponseStyle(strings.ToLower(strings.TrimSpace(s))); st {
	case AIStyleConcise, AIStyleDetailed:
		return st, nil
	}
	return "", fmt.Errorf("invalid assistant style %q: must be concise or detailed", s)
}

// DefaultLanguage is used until the user picks another one.
const DefaultLanguage = "en"

// Settings holds per-user preferences.
type Settings struct {
	UserID          string          `json:"userId"`
	Theme           Theme           `json:"theme"`
	AIResponseStyle AIResponseStyle `json:"aiResponseStyle"`
	Language        string          `json:"language"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DefaultSettings returns the preferences of a user who never changed any.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:          userID,
		Theme:           ThemeLight,
		AIResponseStyle: AIStyleConcise,
		Language:        DefaultLanguage,
	}
}
