package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

var failedLimit int

// shop queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process background jobs without serving HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.Work(cmd.Context())
	},
}

// shop queue:failed --limit 20
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that ran out of attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		rows, err := app.NewQueue(database.DB).Failed(cmd.Context(), failedLimit)
		if err != nil {
			return err
		}
		return app.PrintFailedJobs(cmd.OutOrStdout(), rows)
	},
}

// shop schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the periodic tasks run by serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := application.ScheduleList()
		if err != nil {
			return err
		}
		for _, t := range tasks {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	queueFailedCmd.Flags().IntVar(&failedLimit, "limit", 20, "how many rows to show")
}
