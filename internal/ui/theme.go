package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/queuecall/internal/turn"
)

// Theme defines colors for both surfaces.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string
	FocusBg    string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// CategoryColors colours the turn status badge.
	CategoryColors map[turn.Category]string
}

// CategoryColor returns the badge color for c, falling back to Muted.
func (t Theme) CategoryColor(c turn.Category) string {
	if color, ok := t.CategoryColors[c]; ok {
		return color
	}
	return t.Muted
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Card         lipgloss.Style
	Box          lipgloss.Style
	Button       lipgloss.Style
	ButtonBusy   lipgloss.Style
	Link         lipgloss.Style

	theme Theme
}

// Styles builds the styles for this theme using the default renderer.
func (t Theme) Styles() Styles {
	return t.StylesFor(lipgloss.DefaultRenderer())
}

// StylesFor builds the styles for this theme on renderer r.
func (t Theme) StylesFor(r *lipgloss.Renderer) Styles {
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Header: r.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: r.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: fg(t.Warning).Bold(true),

		Label:        fg(t.Muted).Width(22),
		FocusedLabel: fg(t.Accent).Bold(true).Width(22),
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(1, 3),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Button: r.NewStyle().
			Background(lipgloss.Color(t.Accent)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 2),
		ButtonBusy: r.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Faint)).
			Padding(0, 2),
		Link: fg(t.Accent).Underline(true),

		theme: t,
	}
}

// StatusStyle returns the badge style for a status category.
func (s Styles) StatusStyle(c turn.Category) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(s.theme.CategoryColor(c))).
		Bold(true).
		Padding(0, 1)
}

// StatusText returns a foreground-only style for a status category, used
// where a badge background would be noise.
func (s Styles) StatusText(c turn.Category) lipgloss.Style {
	return s.Text.Foreground(lipgloss.Color(s.theme.CategoryColor(c))).Bold(true)
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, defaulting to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24",
		Surface:    "#192330",
		SurfaceAlt: "#212e3f",
		FocusBg:    "#29394f",

		Border:      "#39506d",
		BorderFocus: "#719cd6",

		Text:    "#cdcecf",
		Muted:   "#738091",
		Faint:   "#71839b",
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",

		CategoryColors: map[turn.Category]string{
			turn.CategoryPending:    "#f4a261", // orange
			turn.CategoryActiveCall: "#81b29a", // green
			turn.CategoryTerminal:   "#738091", // comment
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D",
		Surface:    "#1F1F28",
		SurfaceAlt: "#2A2A37",
		FocusBg:    "#2A2A37",

		Border:      "#54546D",
		BorderFocus: "#7E9CD8",

		Text:    "#DCD7BA",
		Muted:   "#C8C093",
		Faint:   "#727169",
		Accent:  "#7E9CD8",
		Success: "#98BB6C",
		Warning: "#E6C384",
		Danger:  "#E46876",

		CategoryColors: map[turn.Category]string{
			turn.CategoryPending:    "#FFA066", // surimiOrange
			turn.CategoryActiveCall: "#98BB6C", // springGreen
			turn.CategoryTerminal:   "#727169", // fujiGray
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617",
		Surface:    "#0f172a",
		SurfaceAlt: "#1e293b",
		FocusBg:    "#283548",

		Border:      "#334155",
		BorderFocus: "#38bdf8",

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",

		CategoryColors: map[turn.Category]string{
			turn.CategoryPending:    "#f97316", // orange-500
			turn.CategoryActiveCall: "#22c55e", // green-500
			turn.CategoryTerminal:   "#64748b", // slate-500
		},
	}
}
