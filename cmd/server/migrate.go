package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/timesheet-api/internal/database"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
)

var seedDemoUser bool

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer closeDB(db)

		if err := database.Migrate(db, log); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}

		if !seedDemoUser {
			return nil
		}

		authService := services.NewAuthService(repository.NewUserRepository(db), log)
		created, err := authService.EnsureDemoUser()
		if err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "created demo user demoUser / demo123")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "users already exist, demo user not created")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&seedDemoUser, "demo-user", false, "create demoUser/demo123 when no user exists")
	rootCmd.AddCommand(migrateCmd)
}
