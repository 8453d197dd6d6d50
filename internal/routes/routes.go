package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskmaster/internal/handlers"
)

// SetupRoutes maps each core operation to one endpoint. Everything under
// /tasks requires a bearer token; signup and login do not.
func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	authMW gin.HandlerFunc,
	loginLimiter gin.HandlerFunc,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/signup", loginLimiter, authHandler.Signup)
	r.POST("/login", loginLimiter, authHandler.Login)

	// ---- protected
	tasks := r.Group("/tasks", authMW)
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.GET("/export/pdf", taskHandler.ExportPDF)
		tasks.POST("/search", taskHandler.Search)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/archive", taskHandler.Archive)
	}

	return r
}
