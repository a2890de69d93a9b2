// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/catalog/internal/client"
	"github.com/tomtom215/catalog/internal/config"
	"github.com/tomtom215/catalog/internal/logging"
)

// app carries what the subcommands share once the root has run.
type app struct {
	cfg     *config.ClientConfig
	logFile *os.File

	apiURL    string
	prefsPath string
	logPath   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the item catalog from the terminal",
		Long: `catalog talks to a catalog server over its JSON API.

Run without a subcommand to open the interactive browser, or use list, get
and stats for scriptable JSON output.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "catalog server base URL (default from CATALOG_API_URL)")
	root.PersistentFlags().StringVar(&a.prefsPath, "prefs", "", "theme preference file (default from CATALOG_PREFS_PATH)")
	root.PersistentFlags().StringVar(&a.logPath, "log-file", "", "write logs to this file")

	root.AddCommand(
		newBrowseCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newStatsCmd(a),
	)
	return root
}

// setup loads the client config, applies flag overrides and points the
// logger somewhere that will not corrupt the terminal UI.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIURL = a.apiURL
	}
	if flags.Changed("prefs") {
		cfg.PrefsPath = a.prefsPath
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	var out io.Writer = os.Stderr
	format := "console"
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
		format = "json"
	case isBrowse(cmd):
		out = io.Discard
	}
	logging.Init(logging.Config{
		Level:     cfg.LogLevel,
		Format:    format,
		Timestamp: true,
		Output:    out,
	})
	return nil
}

func (a *app) teardown() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func (a *app) newClient() (*client.Client, error) {
	return client.New(client.Options{
		BaseURL:           a.cfg.APIURL,
		Timeout:           a.cfg.Timeout,
		RequestsPerSecond: a.cfg.RequestsPerSecond,
		BreakerFailures:   a.cfg.BreakerFailures,
		BreakerTimeout:    a.cfg.BreakerTimeout,
	})
}

func isBrowse(cmd *cobra.Command) bool {
	return cmd.Name() == "browse" || !cmd.HasParent()
}
