package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/app"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

var adminEmail, adminPassword string

// shop create-admin --email a@b.co --password secret
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account, or grant the admin role to an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		svc := services.NewAuthService(repositories.NewUserRepository(database.DB))
		user, err := svc.CreateAdmin(cmd.Context(), services.Credentials{Email: adminEmail, Password: adminPassword})
		var invalid *services.ValidationError
		if errors.As(err, &invalid) {
			for field, msg := range invalid.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, msg)
			}
			return errors.New("invalid admin credentials")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s ready (id %d).\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 6 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
