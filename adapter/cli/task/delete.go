package task

import (
	"fmt"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		result, err := app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{
			Actor:  app.CurrentActor,
			TaskID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s (%s)\n", result.Title, result.ID)
		return nil
	},
}
