package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-shop/database/seeders"
	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

// shop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		n, err := app.Migrator(cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) ran.\n", n)
		return nil
	},
}

// shop migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		n, err := app.Migrator(cmd.OutOrStdout()).Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back.\n", n)
		return nil
	},
}

// shop migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		rows, err := app.Migrator(cmd.OutOrStdout()).Status()
		if err != nil {
			return err
		}
		return app.PrintMigrationStatus(cmd.OutOrStdout(), rows)
	},
}

// shop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
	},
}
