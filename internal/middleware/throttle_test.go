package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestThrottle_AnonymousByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := ratelimit.NewMemoryLimiter(map[string]ratelimit.Rate{ratelimit.ScopeLogin: {Limit: 1, Window: time.Minute}}, nil)
	var recorded error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			recorded = last.Err
		}
	})
	r.GET("/login", Throttle(limiter, ratelimit.ScopeLogin, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, doGet(r, "/login", "").Code)
	require.NoError(t, recorded)
	w := doGet(r, "/login", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
	require.Contains(t, w.Body.String(), apperr.ErrRateLimited.Error())
	require.True(t, errors.Is(recorded, apperr.ErrRateLimited))
}

func TestThrottle_KeyedByActor(t *testing.T) {
	users := fakeUsers{
		"a": {ID: "a", Role: models.RoleManager, IsActive: true},
		"b": {ID: "b", Role: models.RoleManager, IsActive: true},
	}
	limiter := ratelimit.NewMemoryLimiter(map[string]ratelimit.Rate{ratelimit.ScopeTaskCreate: {Limit: 1, Window: time.Minute}}, nil)
	r := newProtectedRouter(users, Throttle(limiter, ratelimit.ScopeTaskCreate, nil))

	ta, _ := testTokens.GenerateToken("a", "a")
	tb, _ := testTokens.GenerateToken("b", "b")
	require.Equal(t, http.StatusOK, doGet(r, "/protected", ta).Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "/protected", ta).Code)
	require.Equal(t, http.StatusOK, doGet(r, "/protected", tb).Code)
}

func TestThrottle_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/login", Throttle(brokenLimiter{}, ratelimit.ScopeLogin, nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusOK, doGet(r, "/login", "").Code)
}
