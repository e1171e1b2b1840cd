package theme

import "github.com/charmbracelet/lipgloss"

// Theme is a color palette for the reader.
type Theme struct {
	Name string
	Slug string

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color

	Border       lipgloss.Color
	BorderActive lipgloss.Color
}

var themes = []Theme{
	{
		Name:         "Catppuccin Mocha",
		Slug:         "catppuccin-mocha",
		Primary:      "#cdd6f4",
		Secondary:    "#a6adc8",
		Accent:       "#f5c2e7",
		Muted:        "#6c7086",
		Error:        "#f38ba8",
		Border:       "#45475a",
		BorderActive: "#89b4fa",
	},
	{
		Name:         "Catppuccin Latte",
		Slug:         "catppuccin-latte",
		Primary:      "#4c4f69",
		Secondary:    "#5c5f77",
		Accent:       "#ea76cb",
		Muted:        "#9ca0b0",
		Error:        "#d20f39",
		Border:       "#dce0e8",
		BorderActive: "#1e66f5",
	},
	{
		Name:         "Dracula",
		Slug:         "dracula",
		Primary:      "#f8f8f2",
		Secondary:    "#6272a4",
		Accent:       "#ff79c6",
		Muted:        "#6272a4",
		Error:        "#ff5555",
		Border:       "#44475a",
		BorderActive: "#bd93f9",
	},
	{
		Name:         "Solarized Light",
		Slug:         "solarized-light",
		Primary:      "#657b83",
		Secondary:    "#93a1a1",
		Accent:       "#d33682",
		Muted:        "#93a1a1",
		Error:        "#dc322f",
		Border:       "#eee8d5",
		BorderActive: "#268bd2",
	},
}

func All() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ByName returns the theme with the given slug, or the first theme.
func ByName(slug string) Theme {
	for _, t := range themes {
		if t.Slug == slug {
			return t
		}
	}
	return themes[0]
}

// Next returns the theme after slug, wrapping to the first.
func Next(slug string) Theme {
	for i, t := range themes {
		if t.Slug == slug {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	VerseNum  lipgloss.Style
	Text      lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Tab: lipgloss.NewStyle().
			Foreground(t.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			Underline(true).
			Padding(0, 1),
		VerseNum: lipgloss.NewStyle().Foreground(t.BorderActive),
		Text:     lipgloss.NewStyle().Foreground(t.Primary),
		Help:     lipgloss.NewStyle().Foreground(t.Muted),
		Error:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}
