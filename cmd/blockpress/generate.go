// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"blockpress/internal/snapshot"
)

func newGenerateCmd(a *app) *cobra.Command {
	var siteFlag string
	cmd := &cobra.Command{
		Use:   "generate-static",
		Short: "Write the static JSON snapshots of one or all active sites",
		Example: `  blockpress generate-static
  blockpress generate-static --site 2f9c1a52-4b7e-4c8e-9a11-0d6f1b3f7e21`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var siteID uuid.UUID
			if siteFlag != "" {
				id, err := uuid.Parse(siteFlag)
				if err != nil {
					return fmt.Errorf("invalid --site: %w", err)
				}
				siteID = id
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			gen, err := a.generator(db)
			if err != nil {
				return err
			}

			var results []snapshot.Result
			if siteFlag != "" {
				results = []snapshot.Result{gen.Generate(cmd.Context(), siteID)}
			} else if results, err = gen.GenerateAll(cmd.Context()); err != nil {
				return err
			}
			return reportResults(cmd, results)
		},
	}
	cmd.Flags().StringVar(&siteFlag, "site", "", "site id (default: every active site)")
	return cmd
}

// reportResults prints results as JSON and fails when any run failed.
func reportResults(cmd *cobra.Command, results []snapshot.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed", failed, len(results))
	}
	return nil
}
