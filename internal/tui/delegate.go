package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/ui"
)

// DeleteLabel is the per-row delete control.
const DeleteLabel = "[Delete]"

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	item model.Item
}

func (i listItem) FilterValue() string { return i.item.Name }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{item: it})
	}
	return out
}

// itemDelegate renders a row as name + delete control, description, timestamp.
type itemDelegate struct {
	loc *time.Location
}

func (d itemDelegate) Height() int                               { return 3 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	selected := index == m.Index()

	prefix := "  "
	if selected {
		prefix = t.Accent.Render(t.SymCursor) + " "
	}
	width := m.Width() - 2
	if width < 20 {
		width = 20
	}

	button := t.Muted.Render(DeleteLabel)
	if selected {
		button = t.Button.Render(DeleteLabel)
	}
	nameWidth := width - lipgloss.Width(DeleteLabel) - 1
	name := ansi.Truncate(it.item.Name, nameWidth, "…")
	nameStyle := t.ItemName
	if selected {
		nameStyle = t.Selected
	}
	gap := nameWidth - lipgloss.Width(name)
	if gap < 0 {
		gap = 0
	}
	line1 := nameStyle.Render(name) + strings.Repeat(" ", gap+1) + button

	line2 := ""
	if it.item.Description != "" {
		line2 = t.ItemDesc.Render(ansi.Truncate(it.item.Description, width, "…"))
	}
	line3 := t.Muted.Render(ui.FormatTimestamp(it.item.CreatedAt.String(), d.loc))

	fmt.Fprintf(w, "%s%s\n  %s\n  %s", prefix, line1, line2, line3)
}
