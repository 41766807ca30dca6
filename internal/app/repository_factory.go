package app

import (
	"fmt"

	identityDomain "github.com/felixgeelhaar/quadra/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/quadra/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	productivityPersistence "github.com/felixgeelhaar/quadra/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() (task.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return productivityPersistence.NewPostgresTaskRepository(f.conn), nil
	case database.DriverSQLite:
		return productivityPersistence.NewSQLiteTaskRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UserRepository creates a user repository for the configured driver.
func (f *RepositoryFactory) UserRepository() (identityDomain.UserRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return identityPersistence.NewPostgresUserRepository(f.conn), nil
	case database.DriverSQLite:
		return identityPersistence.NewSQLiteUserRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.conn), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Driver returns the database driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}
