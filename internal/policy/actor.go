// Package policy decides what an authenticated actor may see and change.
// Everything here is pure: the stores translate scopes into queries and the
// handlers call the Authorize* checks before mutating anything.
package policy

import "task-tracker-api/internal/models"

// Actor is the authenticated caller of a request.
type Actor struct {
	ID        string
	Username  string
	CompanyID string
	Role      models.Role
	Superuser bool
}

// ActorFromUser builds the actor for an authenticated user.
func ActorFromUser(u *models.User) Actor {
	return Actor{
		ID:        u.ID,
		Username:  u.Username,
		CompanyID: u.CompanyID,
		Role:      u.Role,
		Superuser: u.IsSuperuser,
	}
}

// IsManager reports whether the actor holds manager capabilities.
func (a Actor) IsManager() bool {
	return a.Superuser || a.Role == models.RoleManager
}
