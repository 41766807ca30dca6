package cli

import (
	"fmt"

	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/spf13/cobra"
)

var newUserRole string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users and their task counts (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		users, err := app.ListUsersHandler.Handle(cmd.Context(), app.CurrentActor)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Users (%d):\n", len(users))
		for _, u := range users {
			fmt.Fprintf(out, "  %-32s %-7s %3d tasks  %s\n", u.Email, u.Role, u.TaskCount, Dim(u.ID.String()))
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Register a user (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		user, err := app.RegisterUserHandler.Handle(cmd.Context(), identityApp.RegisterUserCommand{
			Actor: app.CurrentActor,
			Email: args[0],
			Role:  newUserRole,
		})
		if err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User registered: %s (%s)\n", user.Email(), user.Role())
		fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", user.ID())
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&newUserRole, "role", "member", "role (admin, member)")
	usersCmd.AddCommand(usersAddCmd)
	rootCmd.AddCommand(usersCmd)
}
