package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore holds tasks. Lookups and mutations are always scoped.
type TaskStore struct {
	db *gorm.DB
}

// NewTaskStore returns a TaskStore backed by db.
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// NewTask is the input of CreateTask.
type NewTask struct {
	Title        string
	Description  string
	Categories   []string
	AssignedToID string
	CreatedByID  string
}

// ListOptions filters and orders ListTasks.
type ListOptions struct {
	Status    models.TaskStatus
	Ascending bool
}

// CreateTask stores a new task owned by companyID. New tasks always start
// in development.
func (s *TaskStore) CreateTask(ctx context.Context, in NewTask, companyID string) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.AssignedToID == "" || in.CreatedByID == "" || companyID == "" {
		return nil, apperr.Validationf("assigned_to, created_by and company are required")
	}

	task := models.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  in.Description,
		Status:       models.StatusDevelopment,
		Categories:   NormalizeCategories(in.Categories),
		AssignedToID: in.AssignedToID,
		CreatedByID:  in.CreatedByID,
		CompanyID:    companyID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("store: create task: %w", err)
	}
	return &task, nil
}

// ListTasks returns the tasks inside scope, newest first unless
// opts.Ascending is set.
func (s *TaskStore) ListTasks(ctx context.Context, scope policy.TaskScope, opts ListOptions) ([]models.Task, error) {
	order := "tasks.created_at desc"
	if opts.Ascending {
		order = "tasks.created_at asc"
	}
	q := s.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("CreatedBy").
		Scopes(taskScope(scope))
	if opts.Status != "" {
		q = q.Where("tasks.status = ?", opts.Status)
	}

	var tasks []models.Task
	if err := q.Order(order).Order("tasks.id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksForCompany returns every task of a company, oldest first.
func (s *TaskStore) ListTasksForCompany(ctx context.Context, companyID string) ([]models.Task, error) {
	return s.ListTasks(ctx, policy.TaskScope{CompanyID: companyID}, ListOptions{Ascending: true})
}

// GetTask returns the task when it is inside scope.
func (s *TaskStore) GetTask(ctx context.Context, id string, scope policy.TaskScope) (*models.Task, error) {
	return getTask(s.db.WithContext(ctx), id, scope)
}

// UpdateTaskStatus sets the status of a task inside scope.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id string, scope policy.TaskScope, status models.TaskStatus) (*models.Task, error) {
	return s.UpdateTask(ctx, id, scope, policy.TaskChanges{Status: &status})
}

// UpdateTask applies changes to a task inside scope. The scope is part of
// the UPDATE statement so a task outside it is never written.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, scope policy.TaskScope, changes policy.TaskChanges) (*models.Task, error) {
	if changes.Status != nil && !changes.Status.Valid() {
		return nil, apperr.Validationf("unknown status %q", *changes.Status)
	}

	var updated *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, id, scope)
		if err != nil {
			return err
		}

		values := *task
		values.AssignedTo = models.User{}
		values.CreatedBy = models.User{}
		var columns []string
		if changes.Title != nil {
			values.Title = strings.TrimSpace(*changes.Title)
			columns = append(columns, "title")
		}
		if changes.Description != nil {
			values.Description = *changes.Description
			columns = append(columns, "description")
		}
		if changes.Status != nil {
			values.Status = *changes.Status
			columns = append(columns, "status")
		}
		if changes.Categories != nil {
			values.Categories = NormalizeCategories(*changes.Categories)
			columns = append(columns, "categories")
		}
		if changes.AssignedToID != nil {
			values.AssignedToID = *changes.AssignedToID
			columns = append(columns, "assigned_to_id")
		}
		if len(columns) == 0 {
			return apperr.Validationf("no fields to update")
		}

		res := tx.Model(&values).Scopes(taskScope(scope)).Select(columns).Updates(&values)
		if res.Error != nil {
			return fmt.Errorf("store: update task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("task not found")
		}

		updated, err = getTask(tx, id, scope)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CountByStatus returns the number of visible tasks per status. Every known
// status is present in the result.
func (s *TaskStore) CountByStatus(ctx context.Context, scope policy.TaskScope) (map[models.TaskStatus]int64, error) {
	type row struct {
		Status models.TaskStatus
		Count  int64
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(taskScope(scope)).
		Select("tasks.status AS status, COUNT(*) AS count").
		Group("tasks.status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: count tasks: %w", err)
	}

	counts := make(map[models.TaskStatus]int64, len(models.TaskStatuses))
	for _, st := range models.TaskStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// NormalizeCategories trims tags, drops empty ones and duplicates while
// keeping the original order.
func NormalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func getTask(db *gorm.DB, id string, scope policy.TaskScope) (*models.Task, error) {
	var task models.Task
	err := db.Preload("AssignedTo").
		Preload("CreatedBy").
		Scopes(taskScope(scope)).
		Where("tasks.id = ?", id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("task not found")
		}
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return &task, nil
}
