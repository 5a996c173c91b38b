package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles the styles and box glyphs every renderer pulls from.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error lipgloss.Style
	Selected, ItemName, ItemDesc         lipgloss.Style
	Button                               lipgloss.Style

	Border lipgloss.Border
	Frame  lipgloss.Color

	SymOK, SymFail, SymCursor string
}

var (
	current = themeFor("classic")

	forceColor, noColor bool

	detectOnce sync.Once
	detected   termenv.Profile
)

// SetTheme switches the active theme. Unknown names fall back to classic.
// "mono" also drops the color profile so nothing emits escape codes; the
// other themes get the detected profile back.
func SetTheme(name string) {
	current = themeFor(name)
	applyProfile()
}

// SetColorForcing overrides terminal detection, e.g. for piped output.
// Disable wins over force; both false returns to detection.
func SetColorForcing(force, disable bool) {
	forceColor, noColor = force, disable
	applyProfile()
}

func applyProfile() {
	detectOnce.Do(func() { detected = lipgloss.ColorProfile() })
	switch {
	case noColor || current.Name == "mono":
		lipgloss.SetColorProfile(termenv.Ascii)
	case forceColor:
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(detected)
	}
}

// Current returns the active theme.
func Current() Theme { return current }

// Themes lists the accepted theme names.
func Themes() []string { return []string{"classic", "neon", "mono"} }

func themeFor(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neon":
		return Theme{
			Name:      "neon",
			Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			ItemName:  lipgloss.NewStyle().Bold(true),
			ItemDesc:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
			Button:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("161")),
			Border:    lipgloss.RoundedBorder(),
			Frame:     lipgloss.Color("13"),
			SymOK:     "✔",
			SymFail:   "✖",
			SymCursor: "❯",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Name:      "mono",
			Title:     plain.Bold(true),
			Muted:     plain,
			Accent:    plain,
			Success:   plain,
			Error:     plain,
			Selected:  plain.Bold(true),
			ItemName:  plain.Bold(true),
			ItemDesc:  plain,
			Button:    plain,
			Border:    lipgloss.NormalBorder(),
			Frame:     lipgloss.Color(""),
			SymOK:     "ok",
			SymFail:   "x",
			SymCursor: ">",
		}
	default:
		return Theme{
			Name:      "classic",
			Title:     lipgloss.NewStyle().Bold(true),
			Muted:     lipgloss.NewStyle().Faint(true),
			Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Selected:  lipgloss.NewStyle().Bold(true).Reverse(true),
			ItemName:  lipgloss.NewStyle().Bold(true),
			ItemDesc:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Button:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")),
			Border:    lipgloss.RoundedBorder(),
			Frame:     lipgloss.Color("8"),
			SymOK:     "✔",
			SymFail:   "✖",
			SymCursor: ">",
		}
	}
}
