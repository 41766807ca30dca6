package cli

import (
	"fmt"

	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts per quadrant and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		stats, err := app.StatsHandler.Stats(cmd.Context(), app.CurrentActor)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d\n", Heading("Total tasks:"), stats.TotalTasks)
		fmt.Fprintln(out)
		for _, q := range task.AllQuadrants() {
			fmt.Fprintf(out, "  %s %-28s %d\n", QuadrantBadge(q.String()), q.Label(), stats.ByQuadrant[q.String()])
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  pending   %d\n", stats.ByStatus[queries.StatusPending])
		fmt.Fprintf(out, "  completed %d\n", stats.ByStatus[queries.StatusCompleted])
		return nil
	},
}

var deadlinesCmd = &cobra.Command{
	Use:   "deadlines",
	Short: "List pending tasks by deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		rows, err := app.StatsHandler.Deadlines(cmd.Context(), app.CurrentActor)
		if err != nil {
			return fmt.Errorf("failed to load deadlines: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No upcoming deadlines.")
			return nil
		}
		for _, d := range rows {
			remaining := fmt.Sprintf("%d days", d.DaysRemaining)
			if d.IsOverdue {
				remaining = warnColor("overdue")
			}
			fmt.Fprintf(out, "%s %s  %s  %s\n",
				QuadrantBadge(d.Quadrant),
				d.DeadlineAt.In(app.Location).Format("2006-01-02 15:04"),
				remaining,
				d.Title,
			)
		}
		return nil
	},
}

func init() {
	statsCmd.AddCommand(deadlinesCmd)
	rootCmd.AddCommand(statsCmd)
}
