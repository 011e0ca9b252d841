package rbac

import (
	"go-erp/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/enforce", handler.Enforce)
		group.GET("/roles", middleware.RBACAuthorize(service, "rbac", "read"), handler.ListRoles)
		group.POST("/roles/assign", middleware.RBACAuthorize(service, "rbac", "manage"), handler.AssignRole)
	}
}
