package api

import "github.com/felixgeelhaar/quadra/internal/app"

// NewFromContainer builds a server over the container's handlers.
func NewFromContainer(c *app.Container, cfg ServerConfig) *Server {
	logger := c.Logger.With("component", "api")
	handler := NewHandler(HandlerConfig{
		CreateTask:   c.CreateTaskHandler,
		UpdateTask:   c.UpdateTaskHandler,
		CompleteTask: c.CompleteTaskHandler,
		DeleteTask:   c.DeleteTaskHandler,
		GetTask:      c.GetTaskHandler,
		ListTasks:    c.ListTasksHandler,
		SearchTasks:  c.SearchTasksHandler,
		Stats:        c.StatsHandler,
		ListUsers:    c.ListUsersHandler,
		RegisterUser: c.RegisterUserHandler,
		Refresh:      c.RefreshWorker,
		Clock:        c.Clock,
		Metrics:      c.Metrics,
		Logger:       logger,
	})
	return NewServer(cfg, handler, c.ActorResolver, c.Health, logger, c.Metrics)
}
