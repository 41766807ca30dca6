package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/spf13/cobra"
)

var showLastRefresh bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute the quadrant of every open task now (admin)",
	Long: `Run the daily quadrant refresh once. Only one refresh runs at a time;
use --last to print the report of the most recent run instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if !app.CurrentActor.IsAdmin() {
			return &sharedApplication.ForbiddenError{Action: "refresh", Resource: "quadrants"}
		}

		out := cmd.OutOrStdout()
		if showLastRefresh {
			report, err := app.RefreshWorker.LastReport(cmd.Context())
			if errors.Is(err, workers.ErrNoRunReport) {
				fmt.Fprintln(out, "No refresh has run yet.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load last refresh: %w", err)
			}
			printRunReport(out, report)
			return nil
		}

		report, err := app.RefreshWorker.RunOnce(cmd.Context(), workers.TriggerManual, app.CurrentActor.UserID)
		if err != nil {
			return err
		}
		printRunReport(out, report)
		return nil
	},
}

func printRunReport(w io.Writer, r *workers.RunReport) {
	result := "ok"
	if !r.Success {
		result = warnColor("failed: " + r.Error)
	}
	fmt.Fprintf(w, "%s %s\n", Heading("Refresh run"), r.RunID)
	fmt.Fprintf(w, "  Trigger:  %s\n", r.Trigger)
	fmt.Fprintf(w, "  Started:  %s\n", r.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Examined: %d\n", r.Examined)
	fmt.Fprintf(w, "  Changed:  %d\n", r.Changed)
	fmt.Fprintf(w, "  Result:   %s\n", result)
}

func init() {
	refreshCmd.Flags().BoolVar(&showLastRefresh, "last", false, "show the most recent run instead of running")
	rootCmd.AddCommand(refreshCmd)
}
