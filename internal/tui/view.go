// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/catalog/internal/client"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/theme"
)

const skeletonWidth = 24

// View implements tea.Model.
func (m Model) View() string {
	st := m.styles()
	if m.view == viewDetail {
		return m.detailView(st)
	}
	return m.listView(st)
}

func (m Model) styles() Styles {
	return StylesFor(m.currentTheme())
}

func (m Model) listView(st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render("Items"))
	b.WriteString("  ")
	b.WriteString(st.Muted.Render("theme: " + string(m.currentTheme())))
	b.WriteString("\n\n")

	if n := len(m.state.Selected); n > 0 {
		b.WriteString(m.selectionPanel(st))
		b.WriteString("\n")
	}

	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	switch {
	case m.state.Loading:
		b.WriteString(m.spinner.View() + st.Muted.Render(" Loading..."))
		b.WriteString("\n")
		for i := 0; i < m.pageSize; i++ {
			b.WriteString("  " + st.Skeleton.Render(strings.Repeat("░", skeletonWidth)) + "\n")
		}
	case len(m.state.Items) == 0:
		b.WriteString(st.Muted.Render("  No items"))
		b.WriteString("\n")
	default:
		for i, it := range m.state.Items {
			b.WriteString(m.itemRow(st, i, it))
			b.WriteString("\n")
		}
	}

	if m.state.Err != nil {
		b.WriteString("\n")
		b.WriteString(st.Danger.Render("Failed to load items. Showing the last successful result."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.pagination(st))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(st.Danger.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.helpLine(st))
	return b.String()
}

func (m Model) itemRow(st Styles, i int, it models.Item) string {
	mark := ""
	if m.state.IsSelected(it.ID) {
		mark = " ✓"
	}
	if i == m.cursor {
		return st.Cursor.Render("> " + it.Name + mark)
	}
	return "  " + st.Text.Render(it.Name) + st.Selected.Render(mark)
}

func (m Model) selectionPanel(st Styles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("Selected Items (%d)", len(m.state.Selected))))
	for _, it := range m.state.Selected {
		b.WriteString("\n")
		b.WriteString(st.Text.Render(fmt.Sprintf("• %s  $%.2f", it.Name, it.Price)))
	}
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("x: remove  c: Clear All Selection"))
	return st.Panel.Render(b.String())
}

func (m Model) pagination(st Styles) string {
	prev := st.Accent.Render("← Previous")
	if !m.canPrev() {
		prev = st.Disabled.Render("← Previous")
	}
	next := st.Accent.Render("Next →")
	if !m.canNext() {
		next = st.Disabled.Render("Next →")
	}
	return fmt.Sprintf("%s   Page %d   %s", prev, m.page+1, next)
}

func (m Model) helpLine(st Styles) string {
	parts := make([]string, 0, len(m.keys.listHelp()))
	for _, k := range m.keys.listHelp() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return st.Muted.Render(strings.Join(parts, " • "))
}

func (m Model) detailView(st Styles) string {
	var b strings.Builder
	switch {
	case m.detail.loading:
		b.WriteString(m.spinner.View() + " Loading...")
	case errors.Is(m.detail.err, client.ErrNotFound):
		b.WriteString(st.Danger.Render("Item not found"))
	case m.detail.err != nil:
		b.WriteString(st.Danger.Render("Error loading item"))
	default:
		it := m.detail.item
		b.WriteString(st.Title.Render(it.Name))
		b.WriteString("\n\n")
		if it.Description != "" {
			b.WriteString(st.Text.Render(it.Description))
			b.WriteString("\n\n")
		}
		if it.Category != "" {
			b.WriteString(st.Muted.Render("Category: ") + st.Text.Render(it.Category))
			b.WriteString("\n")
		}
		b.WriteString(st.Muted.Render("Price: ") + st.Success.Render(fmt.Sprintf("$%.2f", it.Price)))
	}
	b.WriteString("\n\n")
	b.WriteString(st.Muted.Render("esc back • t toggle theme • ctrl+c quit"))
	return b.String()
}

func (m Model) currentTheme() theme.Theme {
	if m.theme == nil {
		return theme.Light
	}
	return m.theme.Theme()
}
