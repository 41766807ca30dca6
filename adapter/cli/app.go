package cli

import (
	"errors"
	"time"

	internalApp "github.com/felixgeelhaar/quadra/internal/app"
	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
)

// ErrNotInitialized is returned by commands that need the database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the application handlers for CLI commands.
type App struct {
	// Task commands
	CreateTaskHandler   *commands.CreateTaskHandler
	UpdateTaskHandler   *commands.UpdateTaskHandler
	CompleteTaskHandler *commands.CompleteTaskHandler
	DeleteTaskHandler   *commands.DeleteTaskHandler

	// Task queries
	GetTaskHandler     *queries.GetTaskHandler
	ListTasksHandler   *queries.ListTasksHandler
	SearchTasksHandler *queries.SearchTasksHandler
	StatsHandler       *queries.StatsHandler

	// Identity
	ListUsersHandler    *identityApp.ListUsersHandler
	RegisterUserHandler *identityApp.RegisterUserHandler

	RefreshWorker *workers.QuadrantRefreshWorker

	// Container backs the serve and health commands. It may be nil in tests
	// that wire handlers directly.
	Container *internalApp.Container

	Clock    sharedApplication.Clock
	Location *time.Location

	// CurrentActor is the user the CLI acts as.
	CurrentActor identity.Actor
}

// NewApp creates a CLI application over the container's handlers.
func NewApp(c *internalApp.Container) *App {
	loc, err := c.Config.RefreshLocation()
	if err != nil {
		loc = time.UTC
	}
	return &App{
		CreateTaskHandler:   c.CreateTaskHandler,
		UpdateTaskHandler:   c.UpdateTaskHandler,
		CompleteTaskHandler: c.CompleteTaskHandler,
		DeleteTaskHandler:   c.DeleteTaskHandler,
		GetTaskHandler:      c.GetTaskHandler,
		ListTasksHandler:    c.ListTasksHandler,
		SearchTasksHandler:  c.SearchTasksHandler,
		StatsHandler:        c.StatsHandler,
		ListUsersHandler:    c.ListUsersHandler,
		RegisterUserHandler: c.RegisterUserHandler,
		RefreshWorker:       c.RefreshWorker,
		Container:           c,
		Clock:               c.Clock,
		Location:            loc,
	}
}

// SetCurrentActor updates the acting user.
func (a *App) SetCurrentActor(actor identity.Actor) {
	a.CurrentActor = actor
}

// Now returns the current time from the application clock.
func (a *App) Now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock.Now()
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
