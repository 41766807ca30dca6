package task

import (
	"fmt"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:     "done [task-id]",
	Short:   "Mark a task as completed",
	Aliases: []string{"complete"},
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

		t, err := app.CompleteTaskHandler.Handle(cmd.Context(), commands.CompleteTaskCommand{
			Actor:  app.CurrentActor,
			TaskID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task completed: %s\n", t.Title())
		return nil
	},
}
