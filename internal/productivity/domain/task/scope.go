package task

import (
	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/google/uuid"
)

// Scope is the set of tasks a caller may see and change. The zero value
// matches nothing.
type Scope struct {
	all     bool
	ownerID uuid.UUID
}

// ScopeFor returns match-all for admins and owner equality for members.
func ScopeFor(actor identity.Actor) Scope {
	if actor.IsAdmin() {
		return AllTasks()
	}
	return OwnedBy(actor.UserID)
}

// AllTasks matches every task. The refresh job and admins use it.
func AllTasks() Scope { return Scope{all: true} }

// OwnedBy matches tasks owned by ownerID.
func OwnedBy(ownerID uuid.UUID) Scope { return Scope{ownerID: ownerID} }

// OwnerID returns the owner filter and false when the scope matches all.
func (s Scope) OwnerID() (uuid.UUID, bool) {
	if s.all {
		return uuid.Nil, false
	}
	return s.ownerID, true
}

// Permits reports whether t is inside the scope.
func (s Scope) Permits(t *Task) bool {
	if s.all {
		return true
	}
	return s.ownerID != uuid.Nil && t.OwnerID() == s.ownerID
}
