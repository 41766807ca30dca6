package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var (
	important   bool
	description string
	deadline    string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task",
	Long: `Add a task. The quadrant follows from --important and --deadline.

Examples:
  quadra task add "Prepare board deck" --important --deadline 2026-03-12
  quadra task add "Book dentist" -d "2026-04-01 09:30"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		command := commands.CreateTaskCommand{
			Actor:       app.CurrentActor,
			Title:       strings.Join(args, " "),
			Description: description,
			IsImportant: important,
		}
		if deadline != "" {
			at, err := cli.ParseDeadline(deadline, app.Location)
			if err != nil {
				return err
			}
			command.DeadlineAt = &at
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		t := result.Task
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task created: %s %s\n", cli.QuadrantBadge(t.Quadrant().String()), t.Title())
		fmt.Fprintf(out, "  ID: %s\n", t.ID())
		fmt.Fprintf(out, "  Quadrant: %s\n", t.Quadrant().Label())
		if d := t.Deadline(); d != nil {
			fmt.Fprintf(out, "  Deadline: %s\n", d.In(app.Location).Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().BoolVarP(&important, "important", "i", false, "mark the task as important")
	addCmd.Flags().StringVar(&description, "description", "", "task description")
	addCmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339)")
}
