package domain

import "github.com/google/uuid"

// Actor is a resolved caller.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor builds an actor for the given user.
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role.IsAdmin() }
