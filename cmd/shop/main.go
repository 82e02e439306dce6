package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-shop/app/jobs"
	"github.com/shashiranjanraj/kashvi-shop/app/routes"
	"github.com/shashiranjanraj/kashvi-shop/pkg/app"

	// Registers the schema migrations and seeders.
	_ "github.com/shashiranjanraj/kashvi-shop/database/migrations"
	_ "github.com/shashiranjanraj/kashvi-shop/database/seeders"
)

var application = app.New().
	Boot(jobs.Register).
	Schedule(jobs.Schedule).
	Routes(routes.Register)

var rootCmd = &cobra.Command{
	Use:           "shop",
	Short:         "Shop admin: orders, inventory and the product API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(queueWorkCmd, queueFailedCmd, scheduleListCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
