package task

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var (
	filterQuadrant string
	status         string
	dueToday       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List the tasks you can see. Admins see every task.

Filter Options:
  --quadrant  Filter by quadrant (Q1, Q2, Q3, Q4)
  --status    Filter by status (pending, completed)
  --today     Show only tasks due today

Examples:
  quadra task list
  quadra task list --quadrant Q1
  quadra task list --status pending --today`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{
			Actor:    app.CurrentActor,
			Quadrant: strings.ToUpper(filterQuadrant),
			Status:   status,
			DueToday: dueToday,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range tasks {
			cli.PrintTask(out, t, app.Location)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&filterQuadrant, "quadrant", "q", "", "filter by quadrant (Q1, Q2, Q3, Q4)")
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (pending, completed)")
	listCmd.Flags().BoolVar(&dueToday, "today", false, "show only tasks due today")
}
