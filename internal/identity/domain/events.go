package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "User"

	RoutingKeyUserRegistered  = "user.registered"
	RoutingKeyUserRoleChanged = "user.role_changed"
)

// UserRegistered is emitted when a user is created.
type UserRegistered struct {
	sharedDomain.BaseEvent
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewUserRegistered creates a UserRegistered event.
func NewUserRegistered(userID uuid.UUID, email, role string, at time.Time) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyUserRegistered, at),
		Email:     email,
		Role:      role,
	}
}

// UserRoleChanged is emitted when a user's role changes.
type UserRoleChanged struct {
	sharedDomain.BaseEvent
	Role string `json:"role"`
}

// NewUserRoleChanged creates a UserRoleChanged event.
func NewUserRoleChanged(userID uuid.UUID, role string, at time.Time) *UserRoleChanged {
	return &UserRoleChanged{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyUserRoleChanged, at),
		Role:      role,
	}
}
