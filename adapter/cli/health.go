package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, Redis and refresh job health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if app.Container == nil || app.Container.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		report := app.Container.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", Heading("Health:"), report.Status)

		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			check := report.Checks[name]
			line := fmt.Sprintf("  %-18s %s", name, check.Status)
			if check.Message != "" {
				line += " " + Dim(check.Message)
			}
			fmt.Fprintln(out, line)
		}

		if report.Status == observability.HealthStatusUnhealthy {
			return errors.New("system unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
