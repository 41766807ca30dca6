package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func fixedClock(t time.Time) sharedApplication.Clock {
	return sharedApplication.ClockFunc(func() time.Time { return t })
}

func in(d time.Duration) *time.Time {
	v := now.Add(d)
	return &v
}

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) FindOpen(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByScope(ctx context.Context, scope task.Scope, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) ApplyQuadrantUpdates(ctx context.Context, updates []task.QuadrantUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

func (m *mockTaskRepo) Insert(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
