package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	internalApp "github.com/felixgeelhaar/quadra/internal/app"
	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/pkg/config"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func setupTestApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:          "test",
		LocalMode:       true,
		DatabaseDriver:  "sqlite",
		SQLitePath:      filepath.Join(t.TempDir(), "cli.db"),
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

	a := NewApp(container)
	a.SetCurrentActor(actor)
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
	return a
}

func execute(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
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

func addTask(t *testing.T, a *App, title string, important bool, deadline *time.Time) {
	t.Helper()
	_, err := a.CreateTaskHandler.Handle(context.Background(), commands.CreateTaskCommand{
		Actor:       a.CurrentActor,
		Title:       title,
		IsImportant: important,
		DeadlineAt:  deadline,
	})
	require.NoError(t, err)
}

func at(d time.Duration) *time.Time {
	v := testNow.Add(d)
	return &v
}

func TestRequireApp(t *testing.T) {
	SetApp(nil)
	_, err := RequireApp()
	assert.ErrorIs(t, err, ErrNotInitialized)

	for _, cmd := range []*cobra.Command{statsCmd, deadlinesCmd, usersCmd, refreshCmd, healthCmd, serveCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			_, err := execute(t, cmd, nil)
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestParseDeadline(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{name: "date", input: "2026-03-12", loc: time.UTC, want: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)},
		{name: "date and time", input: "2026-03-12 17:30", loc: time.UTC, want: time.Date(2026, 3, 12, 17, 30, 0, 0, time.UTC)},
		{name: "date in zone", input: "2026-03-12", loc: berlin, want: time.Date(2026, 3, 11, 23, 0, 0, 0, time.UTC)},
		{name: "rfc3339 keeps its offset", input: "2026-03-12T10:00:00+02:00", loc: time.UTC, want: time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", input: " 2026-03-12 ", loc: time.UTC, want: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "next friday", loc: time.UTC, wantErr: true},
		{name: "empty", input: "", loc: time.UTC, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeadline(tt.input, tt.loc)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid deadline")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestQuadrantBadge(t *testing.T) {
	for _, q := range []string{"Q1", "Q2", "Q3", "Q4"} {
		assert.Equal(t, "["+q+"]", QuadrantBadge(q))
	}
}

func TestDeadlineText(t *testing.T) {
	deadline := time.Date(2026, 3, 12, 17, 0, 0, 0, time.UTC)
	days := func(n int) *int { return &n }

	tests := []struct {
		name     string
		deadline *time.Time
		days     *int
		want     string
	}{
		{name: "none", want: "no deadline"},
		{name: "unknown days", deadline: &deadline, want: "2026-03-12 17:00"},
		{name: "overdue", deadline: &deadline, days: days(-2), want: "2026-03-12 17:00 (overdue by 2 days)"},
		{name: "today", deadline: &deadline, days: days(0), want: "2026-03-12 17:00 (due today)"},
		{name: "tomorrow", deadline: &deadline, days: days(1), want: "2026-03-12 17:00 (1 day left)"},
		{name: "later", deadline: &deadline, days: days(9), want: "2026-03-12 17:00 (9 days left)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeadlineText(tt.deadline, tt.days, time.UTC))
		})
	}
}

func TestStatsCmd(t *testing.T) {
	a := setupTestApp(t)
	addTask(t, a, "Ship release", true, at(24*time.Hour))
	addTask(t, a, "Plan offsite", true, nil)
	addTask(t, a, "Clean inbox", false, nil)

	out, err := execute(t, statsCmd, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "Total tasks: 3")
	assert.Regexp(t, `\[Q1\] Do First\s+1`, out)
	assert.Regexp(t, `\[Q2\] Schedule\s+1`, out)
	assert.Regexp(t, `\[Q3\] Delegate\s+0`, out)
	assert.Regexp(t, `\[Q4\] Eliminate\s+1`, out)
	assert.Contains(t, out, "pending   3")
	assert.Contains(t, out, "completed 0")
}

func TestDeadlinesCmd(t *testing.T) {
	a := setupTestApp(t)

	out, err := execute(t, deadlinesCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No upcoming deadlines.")

	addTask(t, a, "Renew passport", false, at(5*24*time.Hour))
	addTask(t, a, "File taxes", true, at(-48*time.Hour))
	addTask(t, a, "No deadline", true, nil)

	out, err = execute(t, deadlinesCmd, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "No deadline")
	assert.Contains(t, out, "[Q1] 2026-03-08 09:00  overdue  File taxes")
	assert.Contains(t, out, "[Q4] 2026-03-15 09:00  5 days  Renew passport")
	assert.Less(t, bytes.Index([]byte(out), []byte("File taxes")), bytes.Index([]byte(out), []byte("Renew passport")))
}

func TestUsersCmd(t *testing.T) {
	a := setupTestApp(t)

	out, err := execute(t, usersAddCmd, map[string]string{"role": "member"}, "pat@quadra.dev")
	require.NoError(t, err)
	assert.Contains(t, out, "User registered: pat@quadra.dev (member)")

	_, err = execute(t, usersAddCmd, nil, "pat@quadra.dev")
	var validation *sharedApplication.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "email", validation.Field)

	out, err = execute(t, usersCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Users (2):")
	assert.Contains(t, out, "local@quadra.dev")
	assert.Contains(t, out, "pat@quadra.dev")

	t.Run("members are forbidden", func(t *testing.T) {
		member, err := a.RegisterUserHandler.Handle(context.Background(), identityApp.RegisterUserCommand{
			Actor: a.CurrentActor,
			Email: "sam@quadra.dev",
		})
		require.NoError(t, err)
		a.SetCurrentActor(member.Actor())

		_, err = execute(t, usersCmd, nil)
		var forbidden *sharedApplication.ForbiddenError
		assert.True(t, errors.As(err, &forbidden))

		_, err = execute(t, usersAddCmd, nil, "kim@quadra.dev")
		assert.True(t, errors.As(err, &forbidden))
	})
}

func TestRefreshCmd(t *testing.T) {
	a := setupTestApp(t)
	addTask(t, a, "Ship release", true, at(24*time.Hour))
	addTask(t, a, "Plan offsite", true, nil)

	out, err := execute(t, refreshCmd, map[string]string{"last": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "No refresh has run yet.")

	out, err = execute(t, refreshCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Trigger:  manual")
	assert.Contains(t, out, "Examined: 2")
	assert.Contains(t, out, "Changed:  0")
	assert.Contains(t, out, "Result:   ok")

	out, err = execute(t, refreshCmd, map[string]string{"last": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "Examined: 2")

	t.Run("members are forbidden", func(t *testing.T) {
		member, err := a.RegisterUserHandler.Handle(context.Background(), identityApp.RegisterUserCommand{
			Actor: a.CurrentActor,
			Email: "sam@quadra.dev",
		})
		require.NoError(t, err)
		a.SetCurrentActor(member.Actor())

		_, err = execute(t, refreshCmd, nil)
		var forbidden *sharedApplication.ForbiddenError
		assert.True(t, errors.As(err, &forbidden))
	})
}

func TestHealthCmd(t *testing.T) {
	setupTestApp(t)

	out, err := execute(t, healthCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Health: healthy")
	assert.Regexp(t, `database\s+healthy`, out)
	assert.Regexp(t, `quadrant_refresh\s+healthy`, out)
}

func TestRootCommand_LogsCorrelation(t *testing.T) {
	var logs, out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	root := RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	t.Cleanup(func() {
		root.SetOut(nil)
		root.SetArgs(nil)
	})

	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "quadra dev")
	assert.Contains(t, logs.String(), "command start")
	assert.Contains(t, logs.String(), "command end")
	assert.Contains(t, logs.String(), "command=\"quadra version\"")
	assert.Regexp(t, `correlation_id=[0-9a-f-]{36}`, logs.String())
}
