package application

import (
	"go-tams/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.POST("", middleware.RBACAuthorize(rbacService, "application", "submit"), handler.Submit)
		applications.GET("/mine", middleware.RBACAuthorize(rbacService, "application", "read"), handler.GetMine)
		applications.POST("/:id/start-review", middleware.RBACAuthorize(rbacService, "application", "review"), handler.StartReview)
		applications.POST("/:id/review", middleware.RBACAuthorize(rbacService, "application", "review"), handler.Review)
		applications.POST("/:id/revoke", middleware.RBACAuthorize(rbacService, "application", "review"), handler.Revoke)
	}

	positions := r.Group("/positions")
	positions.Use(middleware.AuthMiddleware())
	{
		positions.GET("/:id/applications", middleware.RBACAuthorize(rbacService, "application", "review"), handler.GetByPosition)
	}
}
