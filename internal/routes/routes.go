package routes

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/authz"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	reportHandler *handlers.ReportHandler,
	jwtSecret []byte,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	r.POST("/logout", authHandler.Logout)

	// USERS (managers)
	users := r.Group("/users")
	{
		users.POST("/", middleware.RequireAbility(authz.UserCreate), userHandler.Create)
		users.GET("/", middleware.RequireAbility(authz.UserIndex), userHandler.List)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.GET("/", middleware.RequireAbility(authz.TaskIndex), taskHandler.GetAll)
		tasks.POST("/", middleware.RequireAbility(authz.TaskCreate), taskHandler.Create)
		tasks.GET("/:id", middleware.RequireAbility(authz.TaskShow), taskHandler.GetByID)
		tasks.PUT("/:id", middleware.RequireAbility(authz.TaskUpdate), taskHandler.Update)
		tasks.DELETE("/:id", middleware.RequireAbility(authz.TaskDelete), taskHandler.Delete)
		tasks.PATCH("/:id/update-status", middleware.RequireAbility(authz.TaskUpdateStatus), taskHandler.UpdateStatus)
		tasks.POST("/:id/assign", middleware.RequireAbility(authz.TaskAssign), taskHandler.Assign)
		tasks.POST("/:id/dependencies", middleware.RequireAbility(authz.TaskAddDependencies), taskHandler.AddDependencies)
		tasks.DELETE("/:id/dependencies/:dependency_id", middleware.RequireAbility(authz.TaskRemoveDependency), taskHandler.RemoveDependency)
	}

	// REPORTS (managers)
	reports := r.Group("/reports", middleware.RequireAbility(authz.ReportsView))
	{
		reports.GET("/summary", reportHandler.Summary)
		reports.GET("/tasks/export", reportHandler.ExportPDF)
	}

	return r
}
