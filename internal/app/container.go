package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	identityDomain "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/felixgeelhaar/quadra/internal/productivity/infrastructure/runreport"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quadra/pkg/config"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshMaxAge is how old the last refresh may be before health degrades.
const RefreshMaxAge = 25 * time.Hour

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Clock   sharedApplication.Clock

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when not configured
	RedisClient *redis.Client

	// Repositories
	TaskRepo   task.Repository
	UserRepo   identityDomain.UserRepository
	OutboxRepo outbox.Repository
	RunReports workers.RunReportStore

	// Publishers
	EventPublisher eventbus.Publisher

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Task Command Handlers
	CreateTaskHandler       *commands.CreateTaskHandler
	UpdateTaskHandler       *commands.UpdateTaskHandler
	CompleteTaskHandler     *commands.CompleteTaskHandler
	DeleteTaskHandler       *commands.DeleteTaskHandler
	RefreshQuadrantsHandler *commands.RefreshQuadrantsHandler

	// Task Query Handlers
	GetTaskHandler     *queries.GetTaskHandler
	ListTasksHandler   *queries.ListTasksHandler
	SearchTasksHandler *queries.SearchTasksHandler
	StatsHandler       *queries.StatsHandler

	// Identity
	ActorResolver       *identityApp.ActorResolver
	ListUsersHandler    *identityApp.ListUsersHandler
	RegisterUserHandler *identityApp.RegisterUserHandler
	EnsureUserHandler   *identityApp.EnsureUserHandler

	// Workers
	RefreshWorker   *workers.QuadrantRefreshWorker
	OutboxProcessor *outbox.Processor

	Health *observability.HealthRegistry
}

// Option customizes a Container before it is wired.
type Option func(*Container)

// WithClock replaces the system clock.
func WithClock(clock sharedApplication.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// NewContainer creates and wires all dependencies. The database driver comes
// from cfg; Redis and RabbitMQ are optional in development and local mode.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Clock:   sharedApplication.SystemClock(),
		Health:  observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	factory := NewRepositoryFactory(conn)
	if c.TaskRepo, err = factory.TaskRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create task repository: %w", err)
	}
	if c.UserRepo, err = factory.UserRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.UnitOfWork = database.NewUnitOfWork(conn)

	if c.RedisClient != nil {
		c.RunReports = runreport.NewRedisStore(c.RedisClient, runreport.DefaultKey, 0)
	} else {
		c.RunReports = workers.NewMemoryRunReportStore()
	}

	if err := c.connectPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	loc, err := cfg.RefreshLocation()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("invalid refresh timezone: %w", err)
	}

	// Task command handlers
	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.RefreshQuadrantsHandler = commands.NewRefreshQuadrantsHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)

	// Task query handlers
	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo, c.Clock)
	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo, c.Clock, loc)
	c.SearchTasksHandler = queries.NewSearchTasksHandler(c.TaskRepo, c.Clock)
	c.StatsHandler = queries.NewStatsHandler(c.TaskRepo, c.Clock)

	// Identity
	c.ActorResolver = identityApp.NewActorResolver(c.UserRepo)
	c.ListUsersHandler = identityApp.NewListUsersHandler(c.UserRepo)
	c.RegisterUserHandler = identityApp.NewRegisterUserHandler(c.UserRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)
	c.EnsureUserHandler = identityApp.NewEnsureUserHandler(c.UserRepo, c.OutboxRepo, c.UnitOfWork, c.Clock)

	// Refresh worker
	c.RefreshWorker = workers.NewQuadrantRefreshWorker(
		c.RefreshQuadrantsHandler,
		c.RunReports,
		c.Clock,
		workers.Config{Hour: cfg.RefreshHour, Minute: cfg.RefreshMinute, Location: loc},
		logger.With("component", "quadrant_refresh"),
		c.Metrics,
	)

	// Outbox processor
	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger.With("component", "outbox")).
		WithMetrics(c.Metrics)

	c.registerHealthChecks()

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"redis", c.RedisClient != nil,
		"refresh_at", fmt.Sprintf("%02d:%02d", cfg.RefreshHour, cfg.RefreshMinute),
		"refresh_timezone", loc.String(),
	)

	return c, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.tolerant() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, run reports will be kept in memory", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.tolerant() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, run reports will be kept in memory", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectPublisher() error {
	if c.Config.RabbitMQURL == "" || c.Config.IsLocalMode() {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.tolerant() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}
	breaker := eventbus.DefaultBreakerConfig()
	if c.Config.PublisherBreakerMaxFailures > 0 {
		breaker.MaxFailures = c.Config.PublisherBreakerMaxFailures
	}
	if c.Config.PublisherBreakerTimeout > 0 {
		breaker.OpenTimeout = c.Config.PublisherBreakerTimeout
	}
	c.EventPublisher = eventbus.NewBreakerPublisher(publisher, breaker, c.Logger)
	return nil
}

// tolerant reports whether optional infrastructure may be missing.
func (c *Container) tolerant() bool {
	return c.Config.IsDevelopment() || c.Config.IsLocalMode()
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.DatabaseHealthChecker(c.DBConn.Ping))
	if c.RedisClient != nil {
		client := c.RedisClient
		c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	c.Health.Register("quadrant_refresh", observability.ScheduledJobHealthChecker(c.RefreshWorker.LastRun, RefreshMaxAge))
}

// EnsureLocalUser makes sure the user configured for the CLI exists with
// the configured role and returns it as an actor.
func (c *Container) EnsureLocalUser(ctx context.Context) (identityDomain.Actor, error) {
	id, err := uuid.Parse(c.Config.UserID)
	if err != nil {
		return identityDomain.Actor{}, fmt.Errorf("invalid QUADRA_USER_ID %q: %w", c.Config.UserID, err)
	}
	user, err := c.EnsureUserHandler.Handle(ctx, identityApp.EnsureUserCommand{
		UserID: id,
		Email:  c.Config.UserEmail,
		Role:   c.Config.UserRole,
	})
	if err != nil {
		return identityDomain.Actor{}, err
	}
	return user.Actor(), nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.RefreshWorker != nil {
		c.RefreshWorker.Stop()
	}

	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
