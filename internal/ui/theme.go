package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

type palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	AccentAlt  lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Fault      lipgloss.Color
}

const defaultTheme = "catppuccin"

var palettes = map[string]palette{
	"catppuccin": {
		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Text:       lipgloss.Color("#cdd6f4"),
		Muted:      lipgloss.Color("#6c7086"),
		Accent:     lipgloss.Color("#cba6f7"),
		AccentAlt:  lipgloss.Color("#89b4fa"),
		Border:     lipgloss.Color("#585b70"),
		Success:    lipgloss.Color("#94e2d5"),
		Warning:    lipgloss.Color("#f9e2af"),
		Fault:      lipgloss.Color("#f38ba8"),
	},
	"dracula": {
		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#343746"),
		Text:       lipgloss.Color("#f8f8f2"),
		Muted:      lipgloss.Color("#6272a4"),
		Accent:     lipgloss.Color("#ff79c6"),
		AccentAlt:  lipgloss.Color("#bd93f9"),
		Border:     lipgloss.Color("#44475a"),
		Success:    lipgloss.Color("#50fa7b"),
		Warning:    lipgloss.Color("#f1fa8c"),
		Fault:      lipgloss.Color("#ff5555"),
	},
	"gruvbox": {
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Text:       lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#928374"),
		Accent:     lipgloss.Color("#fabd2f"),
		AccentAlt:  lipgloss.Color("#83a598"),
		Border:     lipgloss.Color("#665c54"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fe8019"),
		Fault:      lipgloss.Color("#fb4934"),
	},
	"solarized_dark": {
		Background: lipgloss.Color("#002b36"),
		Surface:    lipgloss.Color("#073642"),
		Text:       lipgloss.Color("#fdf6e3"),
		Muted:      lipgloss.Color("#586e75"),
		Accent:     lipgloss.Color("#b58900"),
		AccentAlt:  lipgloss.Color("#268bd2"),
		Border:     lipgloss.Color("#586e75"),
		Success:    lipgloss.Color("#859900"),
		Warning:    lipgloss.Color("#cb4b16"),
		Fault:      lipgloss.Color("#dc322f"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[defaultTheme]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

// styles are derived from a palette whenever the theme changes.
type styles struct {
	top       lipgloss.Style
	bottom    lipgloss.Style
	side      lipgloss.Style
	grid      lipgloss.Style
	label     lipgloss.Style
	selected  lipgloss.Style
	highlight lipgloss.Style
	dragging  lipgloss.Style
	prompt    lipgloss.Style
	modal     lipgloss.Style
	status    map[engine.Status]lipgloss.Style
}

func newStyles(p palette) styles {
	base := lipgloss.NewStyle().Foreground(p.Text)
	return styles{
		top:       lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		bottom:    lipgloss.NewStyle().Foreground(p.Muted),
		side:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.Border).Padding(0, 1),
		grid:      lipgloss.NewStyle().Foreground(p.Surface),
		label:     lipgloss.NewStyle().Foreground(p.Muted),
		selected:  lipgloss.NewStyle().Reverse(true).Foreground(p.Accent),
		highlight: lipgloss.NewStyle().Bold(true).Foreground(p.Background).Background(p.Warning),
		dragging:  lipgloss.NewStyle().Bold(true).Foreground(p.AccentAlt),
		prompt:    lipgloss.NewStyle().Foreground(p.Accent),
		modal: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Fault).
			Foreground(p.Text).Padding(1, 2),
		status: map[engine.Status]lipgloss.Style{
			engine.StatusNormal:  base,
			engine.StatusWarning: lipgloss.NewStyle().Foreground(p.Warning),
			engine.StatusFault:   lipgloss.NewStyle().Bold(true).Foreground(p.Fault),
			engine.StatusOffline: lipgloss.NewStyle().Foreground(p.Muted),
		},
	}
}

func (s styles) forStatus(st engine.Status) lipgloss.Style {
	if v, ok := s.status[st]; ok {
		return v
	}
	return s.status[engine.StatusNormal]
}
