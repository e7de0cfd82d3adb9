package models

import (
	"strings"
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusDevelopment TaskStatus = "DEV"
	StatusTesting     TaskStatus = "TEST"
	StatusStuck       TaskStatus = "STUCK"
	StatusCompleted   TaskStatus = "COMP"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{StatusDevelopment, StatusTesting, StatusStuck, StatusCompleted}

var statusLabels = map[TaskStatus]string{
	StatusDevelopment: "Development",
	StatusTesting:     "Testing",
	StatusStuck:       "Stuck",
	StatusCompleted:   "Completed",
}

// Label returns the human readable name of the status.
func (s TaskStatus) Label() string {
	return statusLabels[s]
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseTaskStatus accepts the short code ("COMP") or the label ("Completed").
func ParseTaskStatus(s string) (TaskStatus, bool) {
	s = strings.TrimSpace(s)
	for code, label := range statusLabels {
		if strings.EqualFold(s, string(code)) || strings.EqualFold(s, label) {
			return code, true
		}
	}
	return "", false
}

// Task represents a task in the system. CompanyID is denormalized from the
// assignee and creator, which must belong to the same company.
type Task struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Status       TaskStatus `json:"status" gorm:"type:varchar(10);not null;index"`
	Categories   []string   `json:"categories" gorm:"serializer:json"`
	AssignedToID string     `json:"assigned_to" gorm:"column:assigned_to_id;index;not null"`
	AssignedTo   User       `json:"-" gorm:"foreignKey:AssignedToID"`
	CreatedByID  string     `json:"created_by" gorm:"column:created_by_id;not null"`
	CreatedBy    User       `json:"-" gorm:"foreignKey:CreatedByID"`
	CompanyID    string     `json:"company_id" gorm:"index;not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
