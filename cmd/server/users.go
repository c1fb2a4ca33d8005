package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer closeDB(db)

		authService := services.NewAuthService(repository.NewUserRepository(db), log)
		users, err := authService.ListUsers()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var resetPassword string

var usersResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Set a new password for a user",
	Long: `Set a new password for a user. Without --password the new password
is read from the first line of stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := resetPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer closeDB(db)

		authService := services.NewAuthService(repository.NewUserRepository(db), log)
		user, err := authService.ResetPassword(args[0], password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	usersResetPasswordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "new password")
	usersCmd.AddCommand(usersListCmd, usersResetPasswordCmd)
	rootCmd.AddCommand(usersCmd)
}
