package store

import (
	"task-tracker-api/internal/policy"

	"gorm.io/gorm"
)

// The scopes below are the SQL form of the policy predicates. A scope that
// names no tenant matches no rows.

func taskScope(s policy.TaskScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		if s.CompanyID == "" && s.AssignedToID == "" {
			return db.Where("1 = 0")
		}
		if s.CompanyID != "" {
			db = db.Where("tasks.company_id = ?", s.CompanyID)
		}
		if s.AssignedToID != "" {
			db = db.Where("tasks.assigned_to_id = ?", s.AssignedToID)
		}
		return db
	}
}

func userScope(s policy.UserScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		if s.CompanyID == "" && s.UserID == "" {
			return db.Where("1 = 0")
		}
		if s.CompanyID != "" {
			db = db.Where("users.company_id = ?", s.CompanyID)
		}
		if s.UserID != "" {
			db = db.Where("users.id = ?", s.UserID)
		}
		return db
	}
}

func companyScope(s policy.CompanyScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		if s.CompanyID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("companies.id = ?", s.CompanyID)
	}
}
