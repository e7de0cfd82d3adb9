package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/store"
	"task-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	tokens   *auth.TokenService
	identity *store.IdentityStore
	tasks    *store.TaskStore
	hub      *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	e := &testEnv{
		db:       db,
		tokens:   auth.NewTokenService(auth.TokenConfig{Secret: "test", Issuer: "test", Audience: "test"}),
		identity: store.NewIdentityStore(db),
		tasks:    store.NewTaskStore(db),
		hub:      realtime.NewHub(),
	}
	h := New(e.identity, e.tasks, e.tokens, e.hub, nil)

	r := gin.New()
	r.POST("/api/signup", h.Signup)
	r.POST("/api/login", h.Login)
	p := r.Group("/api", middleware.JWTAuthMiddleware(e.tokens, e.identity))
	p.GET("/me", h.Me)
	p.GET("/users", h.ListUsers)
	p.GET("/companies", h.ListCompanies)
	p.POST("/reportees", h.CreateReportee)
	p.POST("/tasks", h.CreateTask)
	p.GET("/tasks", h.ListTasks)
	p.GET("/tasks/:id", h.GetTask)
	p.PATCH("/tasks/:id", h.UpdateTask)
	p.GET("/stats/tasks", h.TaskStats)
	p.GET("/export/tasks", h.ExportTasks)
	e.router = r
	return e
}

func (e *testEnv) token(t *testing.T, u models.User) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(u.ID, u.Username)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// tenants seeds two companies: Acme with a manager and two reportees and
// Globex with a manager and one reportee.
type tenants struct {
	acme, globex models.Company
	m1, r1, r2   models.User
	m2, rb       models.User
}

func seedTenants(t *testing.T, e *testEnv) tenants {
	t.Helper()
	var s tenants
	s.acme = testutil.SeedCompany(t, e.db, "Acme")
	s.globex = testutil.SeedCompany(t, e.db, "Globex")
	s.m1 = testutil.SeedUser(t, e.db, s.acme, "m1", models.RoleManager)
	s.r1 = testutil.SeedUser(t, e.db, s.acme, "r1", models.RoleReportee)
	s.r2 = testutil.SeedUser(t, e.db, s.acme, "r2", models.RoleReportee)
	s.m2 = testutil.SeedUser(t, e.db, s.globex, "m2", models.RoleManager)
	s.rb = testutil.SeedUser(t, e.db, s.globex, "rb", models.RoleReportee)
	return s
}

func (e *testEnv) requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
	if code >= http.StatusBadRequest {
		body := decode[map[string]any](t, w)
		require.NotEmpty(t, body["error"])
	}
}
