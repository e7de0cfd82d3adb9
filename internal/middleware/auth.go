package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/policy"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// UserLookup resolves the user behind a token.
type UserLookup interface {
	LookupUser(ctx context.Context, id string) (*models.User, error)
}

// JWTAuthMiddleware validates the bearer token and stores the actor in the
// gin context. Tokens of deleted or deactivated users are rejected.
func JWTAuthMiddleware(tokens *auth.TokenService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}
		// browsers cannot set headers on websocket upgrades
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		user, err := users.LookupUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User account is disabled"})
			return
		}

		SetActor(c, policy.ActorFromUser(user))
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}

// RequireManager rejects actors without manager capabilities.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		if !actor.IsManager() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Manager role required"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor stored by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}

// SetActor stores actor in the context for ActorFrom.
func SetActor(c *gin.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
}
