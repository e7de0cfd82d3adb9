package handlers

import (
	"net/http"

	"task-tracker-api/internal/export"
	"task-tracker-api/internal/policy"
	"task-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// ExportTasks handles GET /api/export/tasks
// Returns the caller's company tasks as an xlsx attachment.
func (h *Handler) ExportTasks(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := policy.AuthorizeExport(actor); err != nil {
		h.respondError(c, err)
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), policy.TaskScopeFor(actor), store.ListOptions{Ascending: true})
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := make([]export.TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, export.TaskRow{
			Title:      t.Title,
			Status:     t.Status.Label(),
			AssignedTo: t.AssignedTo.Username,
			Categories: t.Categories,
			CreatedBy:  t.CreatedBy.Username,
			CreatedAt:  t.CreatedAt,
		})
	}

	data, err := export.TasksWorkbook(rows)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=tasks.xlsx")
	c.Data(http.StatusOK, export.ContentType, data)
}
