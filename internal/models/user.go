package models

import (
	"strings"
	"time"
)

// Role is the capability level of a user inside its company
type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleReportee Role = "REPORTEE"
)

// ParseRole accepts either the stored code or the display name, case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MANAGER":
		return RoleManager, true
	case "REPORTEE":
		return RoleReportee, true
	}
	return "", false
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null"`
	CompanyID    string    `json:"company_id" gorm:"index;not null"`
	Company      Company   `json:"-" gorm:"foreignKey:CompanyID"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
