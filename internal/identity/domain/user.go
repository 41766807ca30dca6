package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/google/uuid"
)

// User is an account that owns tasks.
type User struct {
	sharedDomain.BaseAggregateRoot
	email Email
	role  Role
}

// NewUser registers a user with a generated ID.
func NewUser(email Email, role Role, now time.Time) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		email:             email,
		role:              role,
	}
	u.AddDomainEvent(NewUserRegistered(u.ID(), email.String(), role.String(), now))
	return u
}

// NewUserWithID registers a user under a known ID, as the CLI does for the
// configured local user.
func NewUserWithID(id uuid.UUID, email Email, role Role, now time.Time) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, now, now)),
		email:             email,
		role:              role,
	}
	u.AddDomainEvent(NewUserRegistered(id, email.String(), role.String(), now))
	return u
}

// RehydrateUser rebuilds a user from storage.
func RehydrateUser(entity sharedDomain.BaseEntity, email Email, role Role) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		email:             email,
		role:              role,
	}
}

func (u *User) Email() Email { return u.email }
func (u *User) Role() Role   { return u.role }

// Actor returns the user as a caller.
func (u *User) Actor() Actor { return NewActor(u.ID(), u.role) }

// ChangeRole promotes or demotes the user.
func (u *User) ChangeRole(role Role, now time.Time) {
	if u.role == role {
		return
	}
	u.role = role
	u.Touch(now)
	u.AddDomainEvent(NewUserRoleChanged(u.ID(), role.String(), now))
}
