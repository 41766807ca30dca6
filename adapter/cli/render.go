package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
)

// Accepted --deadline layouts. Layouts without a zone are read in the
// refresh timezone.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	q1Color   = color.New(color.FgRed, color.Bold).SprintFunc()
	q2Color   = color.New(color.FgGreen).SprintFunc()
	q3Color   = color.New(color.FgYellow).SprintFunc()
	q4Color   = color.New(color.FgHiBlack).SprintFunc()
	dimColor  = color.New(color.FgHiBlack).SprintFunc()
	warnColor = color.New(color.FgRed).SprintFunc()
	headColor = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// ParseDeadline reads a --deadline value.
func ParseDeadline(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q, use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339", value)
}

// QuadrantBadge renders a quadrant id in its colour.
func QuadrantBadge(quadrant string) string {
	badge := "[" + quadrant + "]"
	switch quadrant {
	case "Q1":
		return q1Color(badge)
	case "Q2":
		return q2Color(badge)
	case "Q3":
		return q3Color(badge)
	default:
		return q4Color(badge)
	}
}

// Heading renders a section title.
func Heading(s string) string {
	return headColor(s)
}

// Dim renders secondary text.
func Dim(s string) string {
	return dimColor(s)
}

// DeadlineText describes a deadline relative to today.
func DeadlineText(deadline *time.Time, days *int, loc *time.Location) string {
	if deadline == nil {
		return "no deadline"
	}
	if loc == nil {
		loc = time.Local
	}
	when := deadline.In(loc).Format("2006-01-02 15:04")
	if days == nil {
		return when
	}
	switch d := *days; {
	case d < 0:
		return fmt.Sprintf("%s %s", when, warnColor(fmt.Sprintf("(overdue by %d days)", -d)))
	case d == 0:
		return when + " (due today)"
	case d == 1:
		return when + " (1 day left)"
	default:
		return fmt.Sprintf("%s (%d days left)", when, d)
	}
}

func statusIcon(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// PrintTask writes the one-task block used by list and search.
func PrintTask(w io.Writer, t queries.TaskDTO, loc *time.Location) {
	fmt.Fprintf(w, "%s %s %s\n", statusIcon(t.Completed), QuadrantBadge(t.Quadrant), t.Title)
	fmt.Fprintf(w, "   ID: %s\n", t.ID)
	if t.DeadlineAt != nil {
		fmt.Fprintf(w, "   Due: %s\n", DeadlineText(t.DeadlineAt, t.DaysUntilDeadline, loc))
	}
	fmt.Fprintln(w)
}

// PrintTaskDetail writes every field of a task.
func PrintTaskDetail(w io.Writer, t queries.TaskDetailDTO, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	fmt.Fprintf(w, "%s %s\n", QuadrantBadge(t.Quadrant), Heading(t.Title))
	fmt.Fprintf(w, "  ID:         %s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(w, "  Details:    %s\n", t.Description)
	}
	fmt.Fprintf(w, "  Quadrant:   %s (%s)\n", t.Quadrant, t.QuadrantLabel)
	fmt.Fprintf(w, "  Important:  %t\n", t.IsImportant)
	fmt.Fprintf(w, "  Deadline:   %s\n", DeadlineText(t.DeadlineAt, t.DaysUntilDeadline, loc))
	if t.Completed && t.CompletedAt != nil {
		fmt.Fprintf(w, "  Completed:  %s\n", t.CompletedAt.In(loc).Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "  Status:     %s\n", t.StatusMessage)
}
