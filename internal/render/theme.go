package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour scheme of the enhanced renderer.
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Accent   lipgloss.Color
	Muted    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
	Border   lipgloss.Color
	Markdown string // glamour standard style
}

// CyberpunkTheme is the default neon palette.
func CyberpunkTheme() Theme {
	return Theme{
		Name:     "cyberpunk",
		Primary:  lipgloss.Color("#ff2a6d"),
		Accent:   lipgloss.Color("#05d9e8"),
		Muted:    lipgloss.Color("#7a7c99"),
		Success:  lipgloss.Color("#01ff89"),
		Warning:  lipgloss.Color("#f9f002"),
		Error:    lipgloss.Color("#ff124f"),
		Border:   lipgloss.Color("#d1f7ff"),
		Markdown: "dark",
	}
}

// HackerTheme is green on black.
func HackerTheme() Theme {
	return Theme{
		Name:     "hacker",
		Primary:  lipgloss.Color("#00ff41"),
		Accent:   lipgloss.Color("#008f11"),
		Muted:    lipgloss.Color("#4b7d4b"),
		Success:  lipgloss.Color("#00ff41"),
		Warning:  lipgloss.Color("#d7ff00"),
		Error:    lipgloss.Color("#ff3333"),
		Border:   lipgloss.Color("#003b00"),
		Markdown: "dark",
	}
}

// DraculaTheme follows the Dracula palette.
func DraculaTheme() Theme {
	return Theme{
		Name:     "dracula",
		Primary:  lipgloss.Color("#bd93f9"),
		Accent:   lipgloss.Color("#8be9fd"),
		Muted:    lipgloss.Color("#6272a4"),
		Success:  lipgloss.Color("#50fa7b"),
		Warning:  lipgloss.Color("#f1fa8c"),
		Error:    lipgloss.Color("#ff5555"),
		Border:   lipgloss.Color("#44475a"),
		Markdown: "dracula",
	}
}

// ThemeByName returns the named theme, falling back to cyberpunk.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hacker":
		return HackerTheme()
	case "dracula":
		return DraculaTheme()
	default:
		return CyberpunkTheme()
	}
}
