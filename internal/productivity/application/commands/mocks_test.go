package commands

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) FindOpen(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, next time.Time) error {
	return m.Called(ctx, id, errMsg, next).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// memoryStore is a transactional in-memory task store. Writes are staged
// per transaction and applied on commit, so rollback is observable.
type memoryStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]task.State
	meta      map[uuid.UUID]domain.BaseEntity
	staged    map[uuid.UUID]task.State
	commits   int
	rollbacks int
	messages  []*outbox.Message
	pending   []*outbox.Message
}

func newMemoryStore(tasks ...*task.Task) *memoryStore {
	s := &memoryStore{
		rows: map[uuid.UUID]task.State{},
		meta: map[uuid.UUID]domain.BaseEntity{},
	}
	for _, t := range tasks {
		s.put(s.rows, t)
	}
	return s
}

func (s *memoryStore) put(into map[uuid.UUID]task.State, t *task.Task) {
	into[t.ID()] = task.State{
		OwnerID:     t.OwnerID(),
		Title:       t.Title(),
		Description: t.Description(),
		Important:   t.IsImportant(),
		Deadline:    t.Deadline(),
		Quadrant:    t.Quadrant(),
		Completed:   t.IsCompleted(),
		CompletedAt: t.CompletedAt(),
	}
	s.meta[t.ID()] = domain.RehydrateBaseEntity(t.ID(), t.CreatedAt(), t.UpdatedAt())
}

func (s *memoryStore) load(id uuid.UUID) (*task.Task, bool) {
	st, ok := s.staged[id]
	if !ok {
		st, ok = s.rows[id]
	}
	if !ok {
		return nil, false
	}
	return task.Rehydrate(s.meta[id], st), true
}

// quadrant returns the committed quadrant of id.
func (s *memoryStore) quadrant(id uuid.UUID) task.Quadrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id].Quadrant
}

func (s *memoryStore) Begin(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = map[uuid.UUID]task.State{}
	s.pending = nil
	return ctx, nil
}

func (s *memoryStore) Commit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.staged {
		s.rows[id] = st
	}
	s.messages = append(s.messages, s.pending...)
	s.staged, s.pending = nil, nil
	s.commits++
	return nil
}

func (s *memoryStore) Rollback(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged, s.pending = nil, nil
	s.rollbacks++
	return nil
}

func (s *memoryStore) FindOpen(context.Context) ([]*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	var out []*task.Task
	for _, id := range ids {
		if t, _ := s.load(id); !t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.load(id)
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (s *memoryStore) FindByScope(context.Context, task.Scope, task.Filter) ([]*task.Task, error) {
	panic("not used by commands")
}

func (s *memoryStore) ApplyQuadrantUpdates(_ context.Context, updates []task.QuadrantUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, u := range updates {
		st, ok := s.rows[u.ID]
		if staged, isStaged := s.staged[u.ID]; isStaged {
			st, ok = staged, true
		}
		if !ok || st.Completed || st.Quadrant == u.Quadrant {
			continue
		}
		st.Quadrant = u.Quadrant
		s.staged[u.ID] = st
		changed++
	}
	return changed, nil
}

func (s *memoryStore) Insert(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(s.stagedOrRows(), t)
	return nil
}

func (s *memoryStore) Update(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[t.ID()]; !ok {
		return task.ErrTaskNotFound
	}
	s.put(s.stagedOrRows(), t)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return task.ErrTaskNotFound
	}
	delete(s.rows, id)
	delete(s.staged, id)
	return nil
}

func (s *memoryStore) stagedOrRows() map[uuid.UUID]task.State {
	if s.staged != nil {
		return s.staged
	}
	return s.rows
}

// memoryOutbox stages messages in the store transaction. Only SaveBatch
// is exercised.
type memoryOutbox struct {
	outbox.Repository
	store *memoryStore
}

func (o memoryOutbox) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	o.store.pending = append(o.store.pending, msgs...)
	return nil
}
