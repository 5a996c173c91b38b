package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel renders lines inside a framed box using the current theme.
func Panel(lines []string) string {
	t := Current()
	box := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.Frame).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

// WritePanel is Panel followed by a newline on w.
func WritePanel(w io.Writer, lines []string) {
	fmt.Fprintln(w, Panel(lines))
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}
