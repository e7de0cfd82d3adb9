package handlers

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/policy"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// categoryList accepts either a JSON array of tags or a comma separated string.
type categoryList []string

func (l *categoryList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("categories must be a list of strings or a comma separated string")
	}
	*l = strings.Split(s, ",")
	return nil
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Categories  categoryList `json:"categories"`
	AssignedTo  string       `json:"assigned_to" binding:"required"`
}

// TaskResponse is the API view of a task
type TaskResponse struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Status             models.TaskStatus `json:"status"`
	StatusLabel        string            `json:"status_label"`
	Categories         []string          `json:"categories"`
	AssignedTo         string            `json:"assigned_to"`
	AssignedToUsername string            `json:"assigned_to_username,omitempty"`
	CreatedBy          string            `json:"created_by"`
	CreatedByUsername  string            `json:"created_by_username,omitempty"`
	CompanyID          string            `json:"company_id"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func toTaskResponse(t models.Task) TaskResponse {
	categories := t.Categories
	if categories == nil {
		categories = []string{}
	}
	return TaskResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Status:             t.Status,
		StatusLabel:        t.Status.Label(),
		Categories:         categories,
		AssignedTo:         t.AssignedToID,
		AssignedToUsername: t.AssignedTo.Username,
		CreatedBy:          t.CreatedByID,
		CreatedByUsername:  t.CreatedBy.Username,
		CompanyID:          t.CompanyID,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// fields that exist on a task but can never be written through the API
var immutableTaskFields = map[string]struct{}{
	"id":         {},
	"company":    {},
	"company_id": {},
	"created_by": {},
	"created_at": {},
	"updated_at": {},
}

// parseTaskChanges decodes a PATCH body into a change set. Keys are checked
// before any value is decoded: immutable and masked fields are denied, then
// unknown ones rejected. Only the keys present in the body end up in the
// change set.
func parseTaskChanges(actor policy.Actor, body map[string]json.RawMessage) (policy.TaskChanges, error) {
	var ch policy.TaskChanges
	keys := slices.Sorted(maps.Keys(body))

	var fields []policy.Field
	var unknown []string
	for _, key := range keys {
		if _, ok := immutableTaskFields[key]; ok {
			return ch, apperr.Deniedf("field %q cannot be changed", key)
		}
		if f, ok := policy.ParseField(key); ok {
			fields = append(fields, f)
		} else {
			unknown = append(unknown, key)
		}
	}
	if err := policy.AuthorizeTaskFields(actor, fields); err != nil {
		return ch, err
	}
	if len(unknown) > 0 {
		return ch, apperr.Validationf("unknown field %q", unknown[0])
	}

	for _, key := range keys {
		raw := body[key]
		switch policy.Field(key) {
		case policy.FieldTitle:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return ch, apperr.Validationf("title must be a string")
			}
			ch.Title = &v
		case policy.FieldDescription:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return ch, apperr.Validationf("description must be a string")
			}
			ch.Description = &v
		case policy.FieldStatus:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return ch, apperr.Validationf("status must be a string")
			}
			st, ok := models.ParseTaskStatus(v)
			if !ok {
				// left unparsed so the policy can reject it for reportees
				st = models.TaskStatus(strings.ToUpper(strings.TrimSpace(v)))
			}
			ch.Status = &st
		case policy.FieldCategories:
			var v categoryList
			if err := json.Unmarshal(raw, &v); err != nil {
				return ch, apperr.Validationf("%s", err.Error())
			}
			list := []string(v)
			ch.Categories = &list
		case policy.FieldAssignedTo:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return ch, apperr.Validationf("assigned_to must be a user id")
			}
			ch.AssignedToID = &v
		}
	}
	return ch, nil
}

// CreateTask handles POST /api/tasks
// Managers create tasks for users of their own company.
func (h *Handler) CreateTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := policy.AuthorizeCreateTask(actor); err != nil {
		h.respondError(c, err)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.checkAssignee(c, actor.CompanyID, req.AssignedTo); err != nil {
		h.respondError(c, err)
		return
	}

	task, err := h.tasks.CreateTask(ctx, store.NewTask{
		Title:        req.Title,
		Description:  req.Description,
		Categories:   req.Categories,
		AssignedToID: req.AssignedTo,
		CreatedByID:  actor.ID,
	}, actor.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(realtime.Event{
		Type:      realtime.EventTaskCreated,
		TaskID:    task.ID,
		CompanyID: task.CompanyID,
		Status:    string(task.Status),
		ActorID:   actor.ID,
	}, task.AssignedToID, task.CreatedByID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created",
		"id":      task.ID,
	})
}

// ListTasks handles GET /api/tasks
// Optional query params: sort (asc|desc on created_at, default desc), status.
func (h *Handler) ListTasks(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	opts := store.ListOptions{Ascending: strings.EqualFold(c.Query("sort"), "asc")}
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseTaskStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		opts.Status = st
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), policy.TaskScopeFor(actor), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTask handles GET /api/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), c.Param("id"), policy.TaskScopeFor(actor))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// UpdateTask handles PATCH /api/tasks/:id
// Managers may change any mutable field; reportees may only mark their own
// tasks as completed.
func (h *Handler) UpdateTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	ctx := c.Request.Context()
	scope := policy.TaskScopeFor(actor)
	task, err := h.tasks.GetTask(ctx, c.Param("id"), scope)
	if err != nil {
		h.respondError(c, err)
		return
	}

	changes, err := parseTaskChanges(actor, body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := policy.AuthorizeTaskUpdate(actor, task, changes); err != nil {
		h.respondError(c, err)
		return
	}
	if changes.AssignedToID != nil {
		if err := h.checkAssignee(c, task.CompanyID, *changes.AssignedToID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	updated, err := h.tasks.UpdateTask(ctx, task.ID, scope, changes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(realtime.Event{
		Type:      realtime.EventTaskUpdated,
		TaskID:    updated.ID,
		CompanyID: updated.CompanyID,
		Status:    string(updated.Status),
		ActorID:   actor.ID,
	}, updated.AssignedToID, updated.CreatedByID, task.AssignedToID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Updated",
		"task":    toTaskResponse(*updated),
	})
}

// TaskStats handles GET /api/stats/tasks
// Returns counts of the caller's visible tasks by status.
func (h *Handler) TaskStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	counts, err := h.tasks.CountByStatus(c.Request.Context(), policy.TaskScopeFor(actor))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var total int64
	resp := gin.H{}
	for _, st := range models.TaskStatuses {
		resp[string(st)] = counts[st]
		total += counts[st]
	}
	resp["total"] = total
	c.JSON(http.StatusOK, resp)
}

// checkAssignee resolves userID and checks it can own a task of companyID.
func (h *Handler) checkAssignee(c *gin.Context, companyID, userID string) error {
	var assignee *models.User
	if userID != "" {
		u, err := h.identity.LookupUser(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		assignee = u
	}
	return policy.CheckAssignee(companyID, assignee)
}
