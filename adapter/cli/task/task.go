package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long: `Create, list, update, complete and delete tasks.

Every task lands in one quadrant of the Eisenhower matrix:
  Q1  important and urgent (deadline within 3 days)
  Q2  important, not urgent
  Q3  urgent, not important
  Q4  neither`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(searchCmd)
}

func parseTaskID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task ID %q: %w", arg, err)
	}
	return id, nil
}
