package policy

import "task-tracker-api/internal/models"

// TaskScope describes the rows of the task collection visible to an actor.
// The zero value matches nothing.
type TaskScope struct {
	All          bool
	CompanyID    string
	AssignedToID string
}

// TaskScopeFor returns the task visibility of a.
func TaskScopeFor(a Actor) TaskScope {
	switch {
	case a.Superuser:
		return TaskScope{All: true}
	case a.Role == models.RoleManager:
		return TaskScope{CompanyID: a.CompanyID}
	case a.Role == models.RoleReportee:
		return TaskScope{AssignedToID: a.ID}
	}
	return TaskScope{}
}

// Matches reports whether t is inside the scope.
func (s TaskScope) Matches(t *models.Task) bool {
	if t == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.CompanyID == "" && s.AssignedToID == "" {
		return false
	}
	if s.CompanyID != "" && t.CompanyID != s.CompanyID {
		return false
	}
	if s.AssignedToID != "" && t.AssignedToID != s.AssignedToID {
		return false
	}
	return true
}

// CanViewTask is the visibility predicate for a single task.
func CanViewTask(a Actor, t *models.Task) bool {
	return TaskScopeFor(a).Matches(t)
}

// UserScope describes the rows of the user collection visible to an actor.
// The zero value matches nothing.
type UserScope struct {
	All       bool
	CompanyID string
	UserID    string
}

// UserScopeFor returns the user visibility of a: managers see their
// company, reportees only themselves.
func UserScopeFor(a Actor) UserScope {
	switch {
	case a.Superuser:
		return UserScope{All: true}
	case a.Role == models.RoleManager:
		return UserScope{CompanyID: a.CompanyID}
	case a.Role == models.RoleReportee:
		return UserScope{UserID: a.ID}
	}
	return UserScope{}
}

// Matches reports whether u is inside the scope.
func (s UserScope) Matches(u *models.User) bool {
	if u == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.CompanyID == "" && s.UserID == "" {
		return false
	}
	if s.CompanyID != "" && u.CompanyID != s.CompanyID {
		return false
	}
	if s.UserID != "" && u.ID != s.UserID {
		return false
	}
	return true
}

// CompanyScope describes the visible companies. The zero value matches nothing.
type CompanyScope struct {
	All       bool
	CompanyID string
}

// CompanyScopeFor returns the company visibility of a.
func CompanyScopeFor(a Actor) CompanyScope {
	if a.Superuser {
		return CompanyScope{All: true}
	}
	return CompanyScope{CompanyID: a.CompanyID}
}

// Matches reports whether c is inside the scope.
func (s CompanyScope) Matches(c *models.Company) bool {
	if c == nil {
		return false
	}
	return s.All || (s.CompanyID != "" && c.ID == s.CompanyID)
}
