package routes

import (
	"log/slog"
	"net/http"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the router wires together.
type Dependencies struct {
	Handler *handlers.Handler
	Tokens  *auth.TokenService
	Users   middleware.UserLookup
	Limiter ratelimit.Limiter
	Logger  *slog.Logger
}

func SetupRoutes(d Dependencies) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.NewMemoryLimiter(nil, nil)
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger(d.Logger))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	h := d.Handler

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/signup", h.Signup)
		api.POST("/login", middleware.Throttle(d.Limiter, ratelimit.ScopeLogin, d.Logger), h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(d.Tokens, d.Users))
	{
		protectedRoutes.GET("/me", h.Me)
		protectedRoutes.GET("/users", h.ListUsers)
		protectedRoutes.GET("/companies", h.ListCompanies)

		protectedRoutes.GET("/tasks", h.ListTasks)
		protectedRoutes.GET("/tasks/:id", h.GetTask)
		protectedRoutes.PATCH("/tasks/:id", h.UpdateTask)
		protectedRoutes.GET("/stats/tasks", h.TaskStats)
		protectedRoutes.GET("/ws", h.WebSocket)
	}

	managerRoutes := protectedRoutes.Group("")
	managerRoutes.Use(middleware.RequireManager())
	{
		managerRoutes.POST("/reportees", h.CreateReportee)
		managerRoutes.POST("/tasks", middleware.Throttle(d.Limiter, ratelimit.ScopeTaskCreate, d.Logger), h.CreateTask)
		managerRoutes.GET("/export/tasks", h.ExportTasks)
	}

	return ginRouter
}
