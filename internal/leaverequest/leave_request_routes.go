package leaverequest

import (
	"go-erp/internal/middleware"
	"go-erp/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.GetById)
		if redisClient != nil {
			requests.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "leave_request", "create"),
				handler.Create,
			)
		} else {
			requests.POST("", middleware.RBACAuthorize(rbacService, "leave_request", "create"), handler.Create)
		}
		requests.PUT("/:id/action",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "leave_request", "approve"),
			handler.Action,
		)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave_request", "create"), handler.Cancel)
		requests.POST("/:id/comments", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.AddComment)
		requests.DELETE("/:id", middleware.RBACAuthorize(rbacService, "leave_request", "manage"), handler.Delete)
	}
}
