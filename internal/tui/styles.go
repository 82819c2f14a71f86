package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colours of the status panel.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeMinimal}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	key     lipgloss.Style
	hint    lipgloss.Style
	busy    lipgloss.Style
	errText lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		label:   lipgloss.NewStyle().Foreground(t.Muted),
		value:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		key:     lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		hint:    lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		busy:    lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		errText: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

func (s styles) metric(label, value string) string {
	return s.label.Render(label+" ") + s.value.Render(value)
}

func (s styles) keys(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.key.Render(pairs[i])+s.hint.Render(" "+pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
