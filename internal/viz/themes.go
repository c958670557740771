package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors each drawing layer and the status text.
type Theme struct {
	Name         string
	Standard     lipgloss.Color
	Acceleration lipgloss.Color
	Scenery      lipgloss.Color
	Rider        lipgloss.Color
	Crashed      lipgloss.Color
	Text         lipgloss.Color
	Muted        lipgloss.Color
	Accent       lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:         "cyberpunk",
		Standard:     lipgloss.Color("#00ffff"),
		Acceleration: lipgloss.Color("#ff00ff"),
		Scenery:      lipgloss.Color("#00ff00"),
		Rider:        lipgloss.Color("#ffff00"),
		Crashed:      lipgloss.Color("#ff0000"),
		Text:         lipgloss.Color("#ffffff"),
		Muted:        lipgloss.Color("#666666"),
		Accent:       lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:         "retro",
		Standard:     lipgloss.Color("#00ff00"),
		Acceleration: lipgloss.Color("#88ff88"),
		Scenery:      lipgloss.Color("#005500"),
		Rider:        lipgloss.Color("#ccffcc"),
		Crashed:      lipgloss.Color("#ffff00"),
		Text:         lipgloss.Color("#00ff00"),
		Muted:        lipgloss.Color("#005500"),
		Accent:       lipgloss.Color("#88ff88"),
	}

	ThemeMinimal = Theme{
		Name:         "minimal",
		Standard:     lipgloss.Color("#ffffff"),
		Acceleration: lipgloss.Color("#ff4444"),
		Scenery:      lipgloss.Color("#44cc44"),
		Rider:        lipgloss.Color("#0088ff"),
		Crashed:      lipgloss.Color("#ffaa00"),
		Text:         lipgloss.Color("#ffffff"),
		Muted:        lipgloss.Color("#888888"),
		Accent:       lipgloss.Color("#0088ff"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme cycles to the theme after t.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
