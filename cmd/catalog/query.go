// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/catalog/internal/client"
	"github.com/tomtom215/catalog/internal/query"
)

func newListCmd(a *app) *cobra.Command {
	var (
		q      string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by name",
		Long: `List items as a JSON array.

Examples:
  catalog list
  catalog list --q app
  catalog list --limit 20 --offset 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			lq := query.Query{Q: q}
			if cmd.Flags().Changed("limit") {
				lq.Limit = query.Int(limit)
			}
			if cmd.Flags().Changed("offset") {
				lq.Offset = query.Int(offset)
			}
			items, err := c.ListItems(cmd.Context(), lq)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&q, "q", "", "case-insensitive name filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of items to skip")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			item, err := c.GetItem(cmd.Context(), id)
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("item %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("get item: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the item count and average price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			st, err := c.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
