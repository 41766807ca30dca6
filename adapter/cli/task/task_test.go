package task

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/quadra/adapter/cli"
	internalApp "github.com/felixgeelhaar/quadra/internal/app"
	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/pkg/config"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is a Tuesday morning in UTC.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// setupLocalModeTestApp creates a CLI app over a SQLite container acting as
// the local admin.
func setupLocalModeTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:          "test",
		LocalMode:       true,
		DatabaseDriver:  "sqlite",
		SQLitePath:      filepath.Join(t.TempDir(), "task.db"),
		UserID:          "00000000-0000-0000-0000-000000000001",
		UserEmail:       "local@quadra.dev",
		UserRole:        "admin",
		RefreshTimezone: "UTC",
	}
	clock := sharedApplication.ClockFunc(func() time.Time { return testNow })

	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg, observability.DiscardLogger(), internalApp.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	actor, err := container.EnsureLocalUser(ctx)
	require.NoError(t, err)

	app := cli.NewApp(container)
	app.SetCurrentActor(actor)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

// run resets cmd's flags, applies flags and invokes RunE.
func run(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func listAll(t *testing.T, app *cli.App) []queries.TaskDTO {
	t.Helper()
	tasks, err := app.ListTasksHandler.Handle(context.Background(), queries.ListTasksQuery{Actor: app.CurrentActor})
	require.NoError(t, err)
	return tasks
}

func createTask(t *testing.T, app *cli.App, title string, important bool, deadline *time.Time) uuid.UUID {
	t.Helper()
	result, err := app.CreateTaskHandler.Handle(context.Background(), commands.CreateTaskCommand{
		Actor:       app.CurrentActor,
		Title:       title,
		IsImportant: important,
		DeadlineAt:  deadline,
	})
	require.NoError(t, err)
	return result.Task.ID()
}

func in(d time.Duration) *time.Time {
	v := testNow.Add(d)
	return &v
}

func TestAddCmd(t *testing.T) {
	tests := []struct {
		name         string
		flags        map[string]string
		args         []string
		wantTitle    string
		wantQuadrant string
	}{
		{
			name:         "important with near deadline",
			flags:        map[string]string{"important": "true", "deadline": "2026-03-12"},
			args:         []string{"Prepare", "board", "deck"},
			wantTitle:    "Prepare board deck",
			wantQuadrant: "Q1",
		},
		{
			name:         "important without deadline",
			flags:        map[string]string{"important": "true", "description": "quarterly"},
			args:         []string{"Plan offsite"},
			wantTitle:    "Plan offsite",
			wantQuadrant: "Q2",
		},
		{
			name:         "urgent only",
			flags:        map[string]string{"deadline": "2026-03-10 17:00"},
			args:         []string{"Reply to vendor"},
			wantTitle:    "Reply to vendor",
			wantQuadrant: "Q3",
		},
		{
			name:         "far deadline",
			flags:        map[string]string{"deadline": "2026-03-20"},
			args:         []string{"Sort photos"},
			wantTitle:    "Sort photos",
			wantQuadrant: "Q4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupLocalModeTestApp(t)

			out, err := run(t, addCmd, tt.flags, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Task created: ["+tt.wantQuadrant+"] "+tt.wantTitle)

			tasks := listAll(t, app)
			require.Len(t, tasks, 1)
			assert.Equal(t, tt.wantTitle, tasks[0].Title)
			assert.Equal(t, tt.wantQuadrant, tasks[0].Quadrant)
			assert.Equal(t, app.CurrentActor.UserID, tasks[0].OwnerID)
		})
	}
}

func TestAddCmd_Errors(t *testing.T) {
	setupLocalModeTestApp(t)

	_, err := run(t, addCmd, map[string]string{"deadline": "soon"}, "Something")
	assert.ErrorContains(t, err, "invalid deadline")

	_, err = run(t, addCmd, nil, "   ")
	var validation *sharedApplication.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "title", validation.Field)
}

func TestListCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)
	createTask(t, app, "Due today", true, in(6*time.Hour))
	createTask(t, app, "Someday", false, nil)
	done := createTask(t, app, "Finished", true, nil)
	_, err := app.CompleteTaskHandler.Handle(context.Background(), commands.CompleteTaskCommand{Actor: app.CurrentActor, TaskID: done})
	require.NoError(t, err)

	tests := []struct {
		name    string
		flags   map[string]string
		want    []string
		notWant []string
	}{
		{name: "all", want: []string{"Tasks (3):", "Due today", "Someday", "[x] [Q2] Finished"}},
		{name: "quadrant", flags: map[string]string{"quadrant": "q1"}, want: []string{"Tasks (1):", "[ ] [Q1] Due today", "(due today)"}, notWant: []string{"Someday"}},
		{name: "pending", flags: map[string]string{"status": "pending"}, want: []string{"Tasks (2):"}, notWant: []string{"Finished"}},
		{name: "completed", flags: map[string]string{"status": "completed"}, want: []string{"Tasks (1):", "Finished"}},
		{name: "today", flags: map[string]string{"today": "true"}, want: []string{"Tasks (1):", "Due today"}},
		{name: "empty", flags: map[string]string{"quadrant": "Q3"}, want: []string{"No tasks found."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, listCmd, tt.flags)
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}

	t.Run("invalid filter", func(t *testing.T) {
		_, err := run(t, listCmd, map[string]string{"status": "archived"})
		var notFound *sharedApplication.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})
}

func TestShowCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)
	id := createTask(t, app, "File taxes", true, in(-30*time.Hour))

	out, err := run(t, showCmd, nil, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "[Q1] File taxes")
	assert.Contains(t, out, "Quadrant:   Q1 (Do First)")
	assert.Contains(t, out, "(overdue by 2 days)")
	assert.Contains(t, out, "Status:     overdue")

	_, err = run(t, showCmd, nil, "not-a-uuid")
	assert.ErrorContains(t, err, "invalid task ID")

	_, err = run(t, showCmd, nil, uuid.NewString())
	var notFound *sharedApplication.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestUpdateCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)
	id := createTask(t, app, "Prepare deck", true, in(24*time.Hour))

	out, err := run(t, updateCmd, map[string]string{"important": "false"}, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Task updated: [Q3] Prepare deck")
	assert.Contains(t, out, "is_important")

	out, err = run(t, updateCmd, map[string]string{"clear-deadline": "true", "title": "Prepare slides"}, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Task updated: [Q4] Prepare slides")

	out, err = run(t, updateCmd, nil, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Task unchanged")

	_, err = run(t, updateCmd, map[string]string{"deadline": "2026-03-11", "clear-deadline": "true"}, id.String())
	assert.ErrorContains(t, err, "mutually exclusive")

	tasks := listAll(t, app)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Prepare slides", tasks[0].Title)
	assert.Equal(t, "Q4", tasks[0].Quadrant)
	assert.Nil(t, tasks[0].DeadlineAt)
}

func TestDoneAndReopen(t *testing.T) {
	app := setupLocalModeTestApp(t)
	id := createTask(t, app, "Book flights", true, nil)

	out, err := run(t, doneCmd, nil, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Task completed: Book flights")
	assert.True(t, listAll(t, app)[0].Completed)

	_, err = run(t, updateCmd, map[string]string{"reopen": "true"}, id.String())
	require.NoError(t, err)
	assert.False(t, listAll(t, app)[0].Completed)
}

func TestDeleteCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)
	id := createTask(t, app, "Old idea", false, nil)

	out, err := run(t, deleteCmd, nil, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Task deleted: Old idea ("+id.String()+")")
	assert.Empty(t, listAll(t, app))

	_, err = run(t, deleteCmd, nil, id.String())
	var notFound *sharedApplication.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestMemberCannotTouchOthersTasks(t *testing.T) {
	app := setupLocalModeTestApp(t)
	id := createTask(t, app, "Admin task", true, nil)

	member, err := app.RegisterUserHandler.Handle(context.Background(), identityApp.RegisterUserCommand{
		Actor: app.CurrentActor,
		Email: "pat@quadra.dev",
	})
	require.NoError(t, err)
	app.SetCurrentActor(member.Actor())

	out, err := run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")

	var forbidden *sharedApplication.ForbiddenError
	for _, cmd := range []*cobra.Command{showCmd, doneCmd, deleteCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			_, err := run(t, cmd, nil, id.String())
			assert.True(t, errors.As(err, &forbidden), "got %v", err)
		})
	}
}

func TestSearchCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)
	createTask(t, app, "Renew passport", true, nil)
	createTask(t, app, "Buy milk", false, nil)

	out, err := run(t, searchCmd, nil, "PASS")
	require.NoError(t, err)
	assert.Contains(t, out, "Matches (1):")
	assert.Contains(t, out, "Renew passport")

	_, err = run(t, searchCmd, nil, "x")
	var validation *sharedApplication.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = run(t, searchCmd, nil, "nothing here")
	var notFound *sharedApplication.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
