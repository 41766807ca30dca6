package task

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search tasks by title or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		tasks, err := app.SearchTasksHandler.Handle(cmd.Context(), queries.SearchTasksQuery{
			Actor: app.CurrentActor,
			Term:  strings.Join(args, " "),
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Matches (%d):\n", len(tasks))
		for _, t := range tasks {
			cli.PrintTask(out, t, app.Location)
		}
		return nil
	},
}
