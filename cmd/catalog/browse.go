// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/catalog/internal/controller"
	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/theme"
	"github.com/tomtom215/catalog/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive item browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd)
		},
	}
}

func (a *app) browse(cmd *cobra.Command) error {
	c, err := a.newClient()
	if err != nil {
		return err
	}

	feed := tui.NewStateFeed()
	items := controller.New(c, controller.Options{
		Debounce: a.cfg.Debounce,
		OnChange: feed.Push,
	})
	defer items.Close()

	applier := tui.NewApplier()
	themes := theme.New(
		theme.NewFileStore(a.cfg.PrefsPath),
		theme.NewTerminalSource(termenv.NewOutput(os.Stdout), 0),
		applier,
	)
	defer themes.Close()

	logging.Info().
		Str("api_url", a.cfg.APIURL).
		Str("theme", string(themes.Theme())).
		Msg("Starting browser")

	model := tui.New(tui.Options{
		Context:  cmd.Context(),
		Items:    items,
		Theme:    themes,
		Feed:     feed,
		PageSize: a.cfg.PageSize,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
