package testutil

import (
	"testing"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SeedCompany inserts a company.
func SeedCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	c := models.Company{ID: uuid.NewString(), Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// SeedUser inserts an active user whose password is "password".
func SeedUser(t *testing.T, db *gorm.DB, company models.Company, username string, role models.Role) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CompanyID:    company.ID,
		IsActive:     true,
	}
	require.NoError(t, db.Omit("Company").Create(&u).Error)
	return u
}

// SeedTask inserts a task in the assignee's company created by creator.
func SeedTask(t *testing.T, db *gorm.DB, title string, creator, assignee models.User) models.Task {
	t.Helper()
	task := models.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  title + " description",
		Status:       models.StatusDevelopment,
		Categories:   []string{"seed"},
		AssignedToID: assignee.ID,
		CreatedByID:  creator.ID,
		CompanyID:    assignee.CompanyID,
	}
	require.NoError(t, db.Omit("AssignedTo", "CreatedBy").Create(&task).Error)
	return task
}
