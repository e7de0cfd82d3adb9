package handlers

import (
	"net/http"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/policy"
	"task-tracker-api/internal/store"

	"github.com/gin-gonic/gin"
)

// CreateReporteeRequest creates a reportee in the caller's company
type CreateReporteeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the safe view of a user
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	CompanyID   string    `json:"company_id"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        string(u.Role),
		CompanyID:   u.CompanyID,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateReportee handles POST /api/reportees
func (h *Handler) CreateReportee(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := policy.AuthorizeCreateReportee(actor); err != nil {
		h.respondError(c, err)
		return
	}

	var req CreateReporteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.identity.CreateUser(c.Request.Context(), store.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Role:      models.RoleReportee,
		CompanyID: actor.CompanyID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reportee created",
		"id":      user.ID,
	})
}

// ListUsers handles GET /api/users
// Managers see their company, reportees only themselves.
func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	users, err := h.identity.ListUsers(c.Request.Context(), policy.UserScopeFor(actor))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// ListCompanies handles GET /api/companies
func (h *Handler) ListCompanies(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	companies, err := h.identity.ListCompanies(c.Request.Context(), policy.CompanyScopeFor(actor))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"count":     len(companies),
	})
}
