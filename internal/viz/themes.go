package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Glass   lipgloss.Color
	Star    lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:    "night",
		Glass:   lipgloss.Color("#8899cc"),
		Star:    lipgloss.Color("#ffd700"),
		Accent:  lipgloss.Color("#00ccff"),
		Text:    lipgloss.Color("#e0e6ff"),
		Muted:   lipgloss.Color("#556080"),
		Warning: lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Glass:   lipgloss.Color("#00cc00"), // Green phosphor
		Star:    lipgloss.Color("#88ff88"),
		Accent:  lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Glass:   lipgloss.Color("#ff9ff3"),
		Star:    lipgloss.Color("#feca57"),
		Accent:  lipgloss.Color("#ff6b6b"), // Coral
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{
		ThemeNight,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme returns the index after current, wrapping around.
func nextTheme(current int) int {
	return (current + 1) % len(Themes)
}
