// Package application resolves callers and manages the user directory.
package application

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/quadra/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
)

// ErrUnauthenticated is returned when the caller cannot be resolved to a
// known user.
var ErrUnauthenticated = errors.New("unauthenticated")

// ActorResolver turns a presented user ID into an Actor.
type ActorResolver struct {
	users domain.UserRepository
}

// NewActorResolver creates a new ActorResolver.
func NewActorResolver(users domain.UserRepository) *ActorResolver {
	return &ActorResolver{users: users}
}

// Resolve looks up the user named by rawID. A missing, malformed or unknown
// ID is ErrUnauthenticated.
func (r *ActorResolver) Resolve(ctx context.Context, rawID string) (domain.Actor, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return domain.Actor{}, ErrUnauthenticated
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Actor{}, ErrUnauthenticated
	}

	user, err := r.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Actor{}, ErrUnauthenticated
	}
	if err != nil {
		return domain.Actor{}, sharedApplication.Store("find user", err)
	}
	return user.Actor(), nil
}
