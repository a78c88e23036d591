package position

import (
	"go-tams/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	positions := r.Group("/positions")
	positions.Use(middleware.AuthMiddleware())
	{
		positions.GET("", middleware.RBACAuthorize(rbacService, "position", "read"), handler.GetAllOpen)
		positions.GET("/mine", middleware.RBACAuthorize(rbacService, "position", "manage"), handler.GetMine)
		positions.GET("/:id", middleware.RBACAuthorize(rbacService, "position", "read"), handler.GetByID)
		positions.POST("", middleware.RBACAuthorize(rbacService, "position", "manage"), handler.Create)
		positions.POST("/:id/close", middleware.RBACAuthorize(rbacService, "position", "manage"), handler.Close)
	}
}
