// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package tui

import (
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomtom215/catalog/internal/theme"
)

// Palette holds the colors for one theme.
type Palette struct {
	Text      string
	Muted     string
	Accent    string
	Selection string
	Success   string
	Danger    string
	Border    string
	Skeleton  string
}

var palettes = map[theme.Theme]Palette{
	theme.Light: {
		Text:      "#1f2328",
		Muted:     "#656d76",
		Accent:    "#0969da",
		Selection: "#ddf4ff",
		Success:   "#1a7f37",
		Danger:    "#cf222e",
		Border:    "#d0d7de",
		Skeleton:  "#eaeef2",
	},
	theme.Dark: {
		Text:      "#e6edf3",
		Muted:     "#8d96a0",
		Accent:    "#4493f8",
		Selection: "#1f2d3d",
		Success:   "#3fb950",
		Danger:    "#f85149",
		Border:    "#30363d",
		Skeleton:  "#21262d",
	},
}

// Styles are the lipgloss styles derived from a Palette.
type Styles struct {
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Success  lipgloss.Style
	Danger   lipgloss.Style
	Skeleton lipgloss.Style
	Panel    lipgloss.Style
	Disabled lipgloss.Style
}

// StylesFor builds the styles for t.
func StylesFor(t theme.Theme) Styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)).Background(lipgloss.Color(p.Selection)),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)).Bold(true),
		Danger:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)).Bold(true),
		Skeleton: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Skeleton)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border)),
	}
}

// Applier is the theme.Applier for the terminal UI. It records the active
// theme and tells lipgloss which background to assume so adaptive colors
// in bubbles components follow it.
type Applier struct {
	current atomic.Value // theme.Theme
}

// NewApplier starts out light.
func NewApplier() *Applier {
	a := &Applier{}
	a.current.Store(theme.Light)
	return a
}

// Apply implements theme.Applier.
func (a *Applier) Apply(t theme.Theme) {
	a.current.Store(t)
	lipgloss.SetHasDarkBackground(t == theme.Dark)
}

// Current returns the last applied theme.
func (a *Applier) Current() theme.Theme {
	return a.current.Load().(theme.Theme)
}
