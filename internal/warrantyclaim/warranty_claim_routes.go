package warrantyclaim

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

	claims := r.Group("/warranty-claims")
	claims.Use(middleware.AuthMiddleware())
	{
		claims.GET("", middleware.RBACAuthorize(rbacService, "warranty_claim", "read"), handler.GetAllByCard)
		claims.GET("/:id", middleware.RBACAuthorize(rbacService, "warranty_claim", "read"), handler.GetById)
		if redisClient != nil {
			claims.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "warranty_claim", "create"),
				handler.Create,
			)
		} else {
			claims.POST("", middleware.RBACAuthorize(rbacService, "warranty_claim", "create"), handler.Create)
		}
		claims.PUT("/:id/status",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "warranty_claim", "manage"),
			handler.UpdateStatus,
		)
		claims.PUT("/:id/resolution",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "warranty_claim", "manage"),
			handler.UpdateResolution,
		)
		claims.POST("/:id/communications", middleware.RBACAuthorize(rbacService, "warranty_claim", "read"), handler.AddCommunication)
		claims.DELETE("/:id", middleware.RBACAuthorize(rbacService, "warranty_claim", "manage"), handler.Delete)
	}
}
