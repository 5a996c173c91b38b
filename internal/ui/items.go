package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/items/internal/model"
)

// EmptyMessage is shown in place of the list when the collection is empty.
const EmptyMessage = "No items yet. Add one above."

const maxLine = 80

// ItemLines renders items for the one-shot list view, one block per item.
func ItemLines(items []model.Item, loc *time.Location) []string {
	t := Current()
	if len(items) == 0 {
		return []string{t.Muted.Render(EmptyMessage)}
	}
	out := make([]string, 0, len(items)*3)
	for i, it := range items {
		if i > 0 {
			out = append(out, "")
		}
		id := t.Muted.Render("#"+it.ID.String())
		out = append(out, fmt.Sprintf("%s %s", id, t.ItemName.Render(ansi.Truncate(it.Name, maxLine, "…"))))
		if it.Description != "" {
			out = append(out, "   "+t.ItemDesc.Render(ansi.Truncate(it.Description, maxLine, "…")))
		}
		out = append(out, "   "+t.Muted.Render(FormatTimestamp(it.CreatedAt.String(), loc)))
	}
	return out
}

// Header is the panel title line with the item count.
func Header(count int) string {
	t := Current()
	return fmt.Sprintf("%s   %s %d", t.Title.Render("Items Manager"), t.Accent.Render("Total"), count)
}
