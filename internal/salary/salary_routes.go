package salary

import (
	"go-tams/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	salaries := r.Group("/salaries")
	salaries.Use(middleware.AuthMiddleware())
	{
		salaries.POST("", middleware.RBACAuthorize(rbacService, "salary", "generate"), handler.Generate)
		salaries.GET("", middleware.RBACAuthorize(rbacService, "salary", "manage"), handler.GetAll)
		salaries.GET("/mine", middleware.RBACAuthorize(rbacService, "salary", "read"), handler.GetMine)
		salaries.GET("/:id", middleware.RBACAuthorize(rbacService, "salary", "read"), handler.GetByID)
		salaries.POST("/:id/pay", middleware.RBACAuthorize(rbacService, "salary", "manage"), handler.MarkPaid)
	}
}
