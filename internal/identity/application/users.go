package application

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/quadra/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UserDTO is a user row of the admin listing.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TaskCount int       `json:"task_count"`
}

// ListUsersHandler lists every user. Admins only.
type ListUsersHandler struct {
	users domain.UserRepository
}

// NewListUsersHandler creates a new ListUsersHandler.
func NewListUsersHandler(users domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{users: users}
}

// Handle returns every user with the number of tasks it owns.
func (h *ListUsersHandler) Handle(ctx context.Context, actor domain.Actor) ([]UserDTO, error) {
	if !actor.IsAdmin() {
		return nil, &sharedApplication.ForbiddenError{Action: "list", Resource: "users"}
	}

	summaries, err := h.users.ListWithTaskCounts(ctx)
	if err != nil {
		return nil, sharedApplication.Store("list users", err)
	}

	dtos := make([]UserDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = UserDTO{
			ID:        s.User.ID(),
			Email:     s.User.Email().String(),
			Role:      s.User.Role().String(),
			TaskCount: s.TaskCount,
		}
	}
	return dtos, nil
}

// RegisterUserCommand adds a user to the directory.
type RegisterUserCommand struct {
	Actor domain.Actor
	Email string
	Role  string
}

// RegisterUserHandler handles the RegisterUserCommand. Admins only.
type RegisterUserHandler struct {
	users      domain.UserRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(users domain.UserRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *RegisterUserHandler {
	return &RegisterUserHandler{users: users, outboxRepo: outboxRepo, uow: uow, clock: clock}
}

// Handle registers the user. An email already in use is a ValidationError.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, &sharedApplication.ForbiddenError{Action: "register", Resource: "user"}
	}

	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, &sharedApplication.ValidationError{Field: "email", Message: err.Error()}
	}
	role := domain.RoleMember
	if cmd.Role != "" {
		if role, err = domain.ParseRole(cmd.Role); err != nil {
			return nil, &sharedApplication.ValidationError{Field: "role", Message: "must be admin or member"}
		}
	}

	user := domain.NewUser(email, role, h.clock.Now())
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		_, err := h.users.FindByEmail(txCtx, email)
		if err == nil {
			return &sharedApplication.ValidationError{Field: "email", Message: "already registered"}
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return sharedApplication.Store("find user", err)
		}
		if err := h.users.Save(txCtx, user); err != nil {
			return sharedApplication.Store("save user", err)
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.Actor.UserID, user.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	user.ClearDomainEvents()
	return user, nil
}

// EnsureUserCommand describes the configured local user.
type EnsureUserCommand struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// EnsureUserHandler creates the local user on first start.
type EnsureUserHandler struct {
	users      domain.UserRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewEnsureUserHandler creates a new EnsureUserHandler.
func NewEnsureUserHandler(users domain.UserRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *EnsureUserHandler {
	return &EnsureUserHandler{users: users, outboxRepo: outboxRepo, uow: uow, clock: clock}
}

// Handle returns the user with cmd.UserID, creating it when absent. The
// role of an existing user is brought in line with cmd.Role.
func (h *EnsureUserHandler) Handle(ctx context.Context, cmd EnsureUserCommand) (*domain.User, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, &sharedApplication.ValidationError{Field: "email", Message: err.Error()}
	}
	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return nil, &sharedApplication.ValidationError{Field: "role", Message: "must be admin or member"}
	}

	var user *domain.User
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := h.clock.Now()
		existing, err := h.users.FindByID(txCtx, cmd.UserID)
		switch {
		case err == nil:
			user = existing
			user.ChangeRole(role, now)
		case errors.Is(err, domain.ErrUserNotFound):
			user = domain.NewUserWithID(cmd.UserID, email, role, now)
		default:
			return sharedApplication.Store("find user", err)
		}

		if len(user.DomainEvents()) == 0 {
			return nil
		}
		if err := h.users.Save(txCtx, user); err != nil {
			return sharedApplication.Store("save user", err)
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, user.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	user.ClearDomainEvents()
	return user, nil
}

func saveEvents(ctx context.Context, repo outbox.Repository, userID uuid.UUID, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, userID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return sharedApplication.Store("serialize events", err)
	}
	return sharedApplication.Store("save outbox messages", repo.SaveBatch(ctx, msgs))
}
