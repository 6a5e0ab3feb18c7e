package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Projects  *handlers.ProjectHandler
	Tasks     *handlers.TaskHandler
	Analytics *handlers.AnalyticsHandler
	Health    gin.HandlerFunc
}

type Options struct {
	Tokens     middleware.TokenParser
	LoginRate  float64
	LoginBurst int
	UploadsDir string // served under /uploads when set
}

func SetupRoutes(r *gin.Engine, h Handlers, opts Options) *gin.Engine {
	// ---- public
	if h.Health != nil {
		r.GET("/healthz", h.Health)
	}
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimiter(rate.Limit(opts.LoginRate), opts.LoginBurst))
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
	}

	// ---- protected
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(opts.Tokens))

	users := api.Group("/users/me")
	{
		users.GET("", h.Users.Me)
		users.PATCH("", h.Users.UpdateMe)
		users.PATCH("/password", h.Users.ChangePassword)
		users.PATCH("/avatar", h.Users.UploadAvatar)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", h.Projects.List)
		projects.POST("", h.Projects.Create)
		projects.GET("/:id", h.Projects.Get)
		projects.PATCH("/:id", h.Projects.Update)
		projects.DELETE("/:id", h.Projects.Delete)
		projects.GET("/:id/board", h.Projects.Board)
		projects.GET("/:id/events", h.Projects.Events)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.Tasks.List)
		tasks.POST("", h.Tasks.Create)
		tasks.GET("/:id", h.Tasks.GetByID)
		tasks.PATCH("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
	}

	stats := api.Group("/analytics")
	{
		stats.GET("/stats/tasks", h.Analytics.TaskStats)
		stats.GET("/stats/productivity", h.Analytics.Productivity)
		stats.GET("/stats/projects", h.Analytics.ProjectStats)
		stats.GET("/stats/overview", h.Analytics.Overview)
		stats.GET("/report.pdf", h.Analytics.ReportPDF)
	}

	return r
}
