package models

import "time"

// AdminCompanyName is the tenant that owns provisioned superusers.
const AdminCompanyName = "ADMIN_COMPANY"

// Company is the tenant boundary. It owns users and, through them, tasks.
type Company struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Company Model
func (Company) TableName() string {
	return "companies"
}
