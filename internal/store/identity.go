// Package store persists companies, users and tasks with gorm. Every read
// and write of tenant data takes a policy scope and applies it in SQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityStore holds companies and users.
type IdentityStore struct {
	db *gorm.DB
}

// NewIdentityStore returns an IdentityStore backed by db.
func NewIdentityStore(db *gorm.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Username  string
	Password  string
	Role      models.Role
	CompanyID string
	Superuser bool
}

// CreateCompany creates a company with a unique name.
func (s *IdentityStore) CreateCompany(ctx context.Context, name string) (*models.Company, error) {
	return createCompany(s.db.WithContext(ctx), name)
}

// CreateUser creates a user inside an existing company.
func (s *IdentityStore) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	return createUser(s.db.WithContext(ctx), in)
}

// SignupManager creates a company and its first manager atomically.
func (s *IdentityStore) SignupManager(ctx context.Context, companyName, username, password string) (*models.User, *models.Company, error) {
	var (
		user    *models.User
		company *models.Company
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		company, err = createCompany(tx, companyName)
		if err != nil {
			return err
		}
		user, err = createUser(tx, NewUser{
			Username:  username,
			Password:  password,
			Role:      models.RoleManager,
			CompanyID: company.ID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return user, company, nil
}

// ProvisionSuperuser creates a superuser in the admin company, creating that
// company on first use.
func (s *IdentityStore) ProvisionSuperuser(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := models.Company{ID: uuid.NewString(), Name: models.AdminCompanyName}
		if err := tx.Where("name = ?", models.AdminCompanyName).FirstOrCreate(&company).Error; err != nil {
			return fmt.Errorf("store: admin company: %w", err)
		}
		var err error
		user, err = createUser(tx, NewUser{
			Username:  username,
			Password:  password,
			Role:      models.RoleManager,
			CompanyID: company.ID,
			Superuser: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials. Unknown users, wrong passwords and
// inactive accounts all fail with apperr.ErrAuthFailure.
func (s *IdentityStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.CheckPassword("", password)
			return nil, apperr.ErrAuthFailure
		}
		return nil, fmt.Errorf("store: find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) || !u.IsActive {
		return nil, apperr.ErrAuthFailure
	}
	return &u, nil
}

// LookupUser returns the user with the given id.
func (s *IdentityStore) LookupUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("store: find user: %w", err)
	}
	return &u, nil
}

// ListUsers returns the users inside scope ordered by username.
func (s *IdentityStore) ListUsers(ctx context.Context, scope policy.UserScope) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Scopes(userScope(scope)).Order("users.username asc").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	return users, nil
}

// ListCompanies returns the companies inside scope ordered by name.
func (s *IdentityStore) ListCompanies(ctx context.Context, scope policy.CompanyScope) ([]models.Company, error) {
	var companies []models.Company
	err := s.db.WithContext(ctx).Scopes(companyScope(scope)).Order("companies.name asc").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("store: list companies: %w", err)
	}
	return companies, nil
}

// SetUserActive flips the active flag of the named user.
func (s *IdentityStore) SetUserActive(ctx context.Context, username string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("store: update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user %q not found", username)
	}
	return nil
}

func createCompany(tx *gorm.DB, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("company name is required")
	}

	var n int64
	if err := tx.Model(&models.Company{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("store: check company name: %w", err)
	}
	if n > 0 {
		return nil, apperr.Validationf("company %q already exists", name)
	}

	c := models.Company{ID: uuid.NewString(), Name: name}
	if err := tx.Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validationf("company %q already exists", name)
		}
		return nil, fmt.Errorf("store: create company: %w", err)
	}
	return &c, nil
}

func createUser(tx *gorm.DB, in NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Validationf("username is required")
	}
	if in.Password == "" {
		return nil, apperr.Validationf("password is required")
	}
	if in.Role != models.RoleManager && in.Role != models.RoleReportee {
		return nil, apperr.Validationf("unknown role %q", in.Role)
	}
	if in.CompanyID == "" {
		return nil, apperr.Validationf("company is required")
	}

	var n int64
	if err := tx.Model(&models.Company{}).Where("id = ?", in.CompanyID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("store: check company: %w", err)
	}
	if n == 0 {
		return nil, apperr.Validationf("company does not exist")
	}
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("store: check username: %w", err)
	}
	if n > 0 {
		return nil, apperr.Validationf("username %q already exists", username)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("store: hash password: %w", err)
	}
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         in.Role,
		CompanyID:    in.CompanyID,
		IsActive:     true,
		IsSuperuser:  in.Superuser,
	}
	if err := tx.Omit("Company").Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validationf("username %q already exists", username)
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return &u, nil
}
