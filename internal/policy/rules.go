package policy

import (
	"sort"
	"strings"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/models"
)

// Field names a mutable task attribute, using its wire name.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldCategories  Field = "categories"
	FieldAssignedTo  Field = "assigned_to"
)

var taskFields = fieldSet(FieldTitle, FieldDescription, FieldStatus, FieldCategories, FieldAssignedTo)

// ParseField maps a wire name onto a mutable task field.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	return f, taskFields.Has(f)
}

// FieldSet is a set of mutable fields.
type FieldSet map[Field]struct{}

func fieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

var taskFieldMasks = map[models.Role]FieldSet{
	models.RoleManager:  fieldSet(FieldTitle, FieldDescription, FieldStatus, FieldCategories, FieldAssignedTo),
	models.RoleReportee: fieldSet(FieldStatus),
}

// reportees may only move a task to one of these statuses
var reporteeStatuses = map[models.TaskStatus]struct{}{
	models.StatusCompleted: {},
}

// MutableTaskFields returns the field mask of the actor.
func MutableTaskFields(a Actor) FieldSet {
	if a.Superuser {
		return taskFieldMasks[models.RoleManager]
	}
	if m, ok := taskFieldMasks[a.Role]; ok {
		return m
	}
	return FieldSet{}
}

// TaskChanges is a partial task update. A nil pointer means the field is
// absent from the request.
type TaskChanges struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Categories   *[]string
	AssignedToID *string
}

// Fields lists the fields present in the change set, sorted.
func (c TaskChanges) Fields() []Field {
	var out []Field
	if c.Title != nil {
		out = append(out, FieldTitle)
	}
	if c.Description != nil {
		out = append(out, FieldDescription)
	}
	if c.Status != nil {
		out = append(out, FieldStatus)
	}
	if c.Categories != nil {
		out = append(out, FieldCategories)
	}
	if c.AssignedToID != nil {
		out = append(out, FieldAssignedTo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Empty reports whether no field is present.
func (c TaskChanges) Empty() bool {
	return len(c.Fields()) == 0
}

// AuthorizeTaskUpdate checks whether a may apply changes to t. A task outside
// the actor's visibility is reported as not found, never as forbidden.
func AuthorizeTaskUpdate(a Actor, t *models.Task, changes TaskChanges) error {
	if !CanViewTask(a, t) {
		return apperr.NotFoundf("task not found")
	}
	fields := changes.Fields()
	if len(fields) == 0 {
		return apperr.Validationf("no fields to update")
	}
	if err := AuthorizeTaskFields(a, fields); err != nil {
		return err
	}
	if changes.Status != nil {
		if !a.IsManager() {
			if _, ok := reporteeStatuses[*changes.Status]; !ok {
				return apperr.Deniedf("reportees may only mark tasks as %s", models.StatusCompleted.Label())
			}
		}
		if !changes.Status.Valid() {
			return apperr.Validationf("unknown status %q", *changes.Status)
		}
	}
	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		return apperr.Validationf("title cannot be empty")
	}
	return nil
}

// AuthorizeTaskFields checks fields against the actor's mask without looking
// at any value, so a denied field is denied whatever it is set to.
func AuthorizeTaskFields(a Actor, fields []Field) error {
	mask := MutableTaskFields(a)
	for _, f := range fields {
		if !mask.Has(f) {
			return apperr.Deniedf("field %q cannot be changed by %s", f, roleName(a))
		}
	}
	return nil
}

// AuthorizeCreateTask allows managers only.
func AuthorizeCreateTask(a Actor) error {
	if !a.IsManager() {
		return apperr.Deniedf("only managers can create tasks")
	}
	return nil
}

// AuthorizeCreateReportee allows managers only.
func AuthorizeCreateReportee(a Actor) error {
	if !a.IsManager() {
		return apperr.Deniedf("only managers can create reportees")
	}
	return nil
}

// AuthorizeExport allows managers only.
func AuthorizeExport(a Actor) error {
	if !a.IsManager() {
		return apperr.Deniedf("only managers can export tasks")
	}
	return nil
}

// CheckAssignee validates that assignee may own a task of companyID. Missing
// and foreign users produce the same error so other tenants stay invisible.
func CheckAssignee(companyID string, assignee *models.User) error {
	if assignee == nil || companyID == "" || assignee.CompanyID != companyID {
		return apperr.Validationf("assigned_to must reference a user in your company")
	}
	if !assignee.IsActive {
		return apperr.Validationf("assigned_to references an inactive user")
	}
	return nil
}

func roleName(a Actor) string {
	if a.Superuser {
		return "superuser"
	}
	switch a.Role {
	case models.RoleManager:
		return "managers"
	case models.RoleReportee:
		return "reportees"
	}
	return "this role"
}
