// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"blockpress/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	run := func(fn func(*sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(db)
		}
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  run(database.Migrate),
	}
	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply pending migrations", RunE: run(database.Migrate)},
		&cobra.Command{Use: "down", Short: "Revert the latest migration", RunE: run(database.Rollback)},
		&cobra.Command{Use: "status", Short: "Show migration status", RunE: run(database.Status)},
		&cobra.Command{
			Use:   "seed",
			Short: "Seed an empty database with a master user and a demo site",
			RunE: run(func(db *sql.DB) error {
				return database.Seed(db, database.SeedOptions{
					AdminEmail:    a.cfg.App.AdminEmail,
					AdminPassword: a.cfg.App.AdminPassword,
				})
			}),
		},
	)
	return cmd
}
