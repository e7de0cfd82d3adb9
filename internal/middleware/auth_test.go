package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) LookupUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFoundf("user not found")
}

var testTokens = auth.NewTokenService(auth.TokenConfig{Secret: "s", Issuer: "i", Audience: "a"})

func newProtectedRouter(users fakeUsers, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens, users))
	handlers := append(extra, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.String(http.StatusOK, actor.ID)
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	users := fakeUsers{"user-1": {ID: "user-1", Username: "alice", Role: models.RoleManager, CompanyID: "c", IsActive: true}}
	r := newProtectedRouter(users)

	token, err := testTokens.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	w := doGet(r, "/protected", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())

	// query param fallback for websocket clients
	w = doGet(r, "/protected?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	w := doGet(newProtectedRouter(fakeUsers{}), "/protected", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_UnknownOrInactiveUser(t *testing.T) {
	users := fakeUsers{"user-2": {ID: "user-2", Username: "bob", Role: models.RoleReportee, IsActive: false}}
	r := newProtectedRouter(users)

	token, _ := testTokens.GenerateToken("ghost", "ghost")
	require.Equal(t, http.StatusUnauthorized, doGet(r, "/protected", token).Code)

	token, _ = testTokens.GenerateToken("user-2", "bob")
	require.Equal(t, http.StatusUnauthorized, doGet(r, "/protected", token).Code)
}

func TestRequireManager(t *testing.T) {
	users := fakeUsers{
		"m": {ID: "m", Role: models.RoleManager, IsActive: true},
		"r": {ID: "r", Role: models.RoleReportee, IsActive: true},
	}
	r := newProtectedRouter(users, RequireManager())

	token, _ := testTokens.GenerateToken("m", "m")
	require.Equal(t, http.StatusOK, doGet(r, "/protected", token).Code)

	token, _ = testTokens.GenerateToken("r", "r")
	require.Equal(t, http.StatusForbidden, doGet(r, "/protected", token).Code)
}
