package timesheet

import (
	"go-tams/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	timesheets := r.Group("/timesheets")
	timesheets.Use(middleware.AuthMiddleware())
	{
		timesheets.POST("", middleware.RBACAuthorize(rbacService, "timesheet", "submit"), handler.Submit)
		timesheets.GET("/mine", middleware.RBACAuthorize(rbacService, "timesheet", "read"), handler.GetMine)
		timesheets.PUT("/:id", middleware.RBACAuthorize(rbacService, "timesheet", "submit"), handler.Edit)
		timesheets.POST("/:id/review", middleware.RBACAuthorize(rbacService, "timesheet", "review"), handler.Review)
	}

	positions := r.Group("/positions")
	positions.Use(middleware.AuthMiddleware())
	{
		positions.GET("/:id/timesheets", middleware.RBACAuthorize(rbacService, "timesheet", "review"), handler.GetByPosition)
	}
}
