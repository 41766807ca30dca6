package task

import (
	"fmt"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		detail, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{
			Actor:  app.CurrentActor,
			TaskID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		cli.PrintTaskDetail(cmd.OutOrStdout(), *detail, app.Location)
		return nil
	},
}
