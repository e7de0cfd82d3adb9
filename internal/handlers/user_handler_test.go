package handlers

import (
	"net/http"
	"testing"

	"task-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

type usersResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

func TestCreateReportee(t *testing.T) {
	e := newTestEnv(t)
	s := seedTenants(t, e)

	w := e.do(t, http.MethodPost, "/api/reportees", e.token(t, s.m1), map[string]string{"username": "new", "password": "pw"})
	e.requireStatus(t, w, http.StatusCreated)
	id := decode[map[string]any](t, w)["id"].(string)

	created, err := e.identity.LookupUser(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, models.RoleReportee, created.Role)
	require.Equal(t, s.acme.ID, created.CompanyID)

	// duplicate username
	w = e.do(t, http.MethodPost, "/api/reportees", e.token(t, s.m1), map[string]string{"username": "new", "password": "pw"})
	e.requireStatus(t, w, http.StatusBadRequest)

	// reportees cannot create users
	w = e.do(t, http.MethodPost, "/api/reportees", e.token(t, s.r1), map[string]string{"username": "other", "password": "pw"})
	e.requireStatus(t, w, http.StatusForbidden)
}

func TestListUsers_Visibility(t *testing.T) {
	e := newTestEnv(t)
	s := seedTenants(t, e)

	w := e.do(t, http.MethodGet, "/api/users", e.token(t, s.m1), nil)
	e.requireStatus(t, w, http.StatusOK)
	resp := decode[usersResponse](t, w)
	require.Equal(t, 3, resp.Count)
	for _, u := range resp.Users {
		require.Equal(t, s.acme.ID, u.CompanyID)
	}

	w = e.do(t, http.MethodGet, "/api/users", e.token(t, s.r1), nil)
	e.requireStatus(t, w, http.StatusOK)
	resp = decode[usersResponse](t, w)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, s.r1.ID, resp.Users[0].ID)
}

func TestListCompanies_Visibility(t *testing.T) {
	e := newTestEnv(t)
	s := seedTenants(t, e)

	w := e.do(t, http.MethodGet, "/api/companies", e.token(t, s.r2), nil)
	e.requireStatus(t, w, http.StatusOK)
	resp := decode[struct {
		Companies []models.Company `json:"companies"`
	}](t, w)
	require.Len(t, resp.Companies, 1)
	require.Equal(t, "Acme", resp.Companies[0].Name)

	root, err := e.identity.ProvisionSuperuser(t.Context(), "root", "pw")
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/companies", e.token(t, *root), nil)
	e.requireStatus(t, w, http.StatusOK)
	resp = decode[struct {
		Companies []models.Company `json:"companies"`
	}](t, w)
	require.Len(t, resp.Companies, 3)
}
