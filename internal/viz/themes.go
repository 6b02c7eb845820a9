package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the pH scale and the chrome around it.
type Theme struct {
	Name    string
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Acid    lipgloss.Color // pH 0
	Neutral lipgloss.Color // pH 7
	Base    lipgloss.Color // pH 14
	Water   lipgloss.Color
}

var (
	ThemeIndicator = Theme{
		Name:    "indicator", // universal indicator paper
		Accent:  lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Acid:    lipgloss.Color("#e02020"),
		Neutral: lipgloss.Color("#40c040"),
		Base:    lipgloss.Color("#5020a0"),
		Water:   lipgloss.Color("#1e3a5f"),
	}

	ThemeLitmus = Theme{
		Name:    "litmus",
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Acid:    lipgloss.Color("#ff4757"),
		Neutral: lipgloss.Color("#a070c0"),
		Base:    lipgloss.Color("#3742fa"),
		Water:   lipgloss.Color("#2d1b2e"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Acid:    lipgloss.Color("#cccccc"),
		Neutral: lipgloss.Color("#888888"),
		Base:    lipgloss.Color("#444444"),
		Water:   lipgloss.Color("#222222"),
	}

	CurrentTheme = ThemeIndicator

	Themes = []Theme{
		ThemeIndicator,
		ThemeLitmus,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, or the indicator theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeIndicator
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
