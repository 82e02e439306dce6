package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
)

// shop serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.Serve(cmd.Context())
	},
}

// shop route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := application.RouteList()
		if err != nil {
			return err
		}
		return app.PrintRoutes(cmd.OutOrStdout(), list)
	},
}
