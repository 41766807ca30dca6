package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/quadra/adapter/cli"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	domaintask "github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/spf13/cobra"
)

var (
	newTitle       string
	newDescription string
	newImportant   bool
	newDeadline    string
	clearDeadline  bool
	reopen         bool
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Update selected fields of a task. Only the flags you pass change;
the quadrant is recomputed afterwards.

Examples:
  quadra task update 3f1c... --important
  quadra task update 3f1c... --important=false --deadline 2026-03-20
  quadra task update 3f1c... --clear-deadline
  quadra task update 3f1c... --reopen`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		changes, err := buildChanges(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.UpdateTaskHandler.Handle(cmd.Context(), commands.UpdateTaskCommand{
			Actor:   app.CurrentActor,
			TaskID:  id,
			Changes: changes,
		})
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		out := cmd.OutOrStdout()
		t := result.Task
		if len(result.Fields) == 0 {
			fmt.Fprintf(out, "Task unchanged: %s %s\n", cli.QuadrantBadge(t.Quadrant().String()), t.Title())
			return nil
		}
		fmt.Fprintf(out, "Task updated: %s %s\n", cli.QuadrantBadge(t.Quadrant().String()), t.Title())
		fmt.Fprintf(out, "  Changed: %s\n", strings.Join(result.Fields, ", "))
		return nil
	},
}

func buildChanges(cmd *cobra.Command, app *cli.App) (domaintask.Changes, error) {
	var ch domaintask.Changes
	flags := cmd.Flags()

	if flags.Changed("title") {
		ch.Title = &newTitle
	}
	if flags.Changed("description") {
		ch.Description = &newDescription
	}
	if flags.Changed("important") {
		ch.Important = &newImportant
	}
	if flags.Changed("deadline") && flags.Changed("clear-deadline") {
		return ch, errors.New("--deadline and --clear-deadline are mutually exclusive")
	}
	if flags.Changed("deadline") {
		at, err := cli.ParseDeadline(newDeadline, app.Location)
		if err != nil {
			return ch, err
		}
		ch.Deadline = &at
	}
	ch.ClearDeadline = clearDeadline
	if reopen {
		open := false
		ch.Completed = &open
	}
	return ch, nil
}

func init() {
	updateCmd.Flags().StringVar(&newTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&newDescription, "description", "", "new description")
	updateCmd.Flags().BoolVarP(&newImportant, "important", "i", false, "mark as important (--important=false to unmark)")
	updateCmd.Flags().StringVarP(&newDeadline, "deadline", "d", "", "new deadline")
	updateCmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "remove the deadline")
	updateCmd.Flags().BoolVar(&reopen, "reopen", false, "mark a completed task as pending again")
}
