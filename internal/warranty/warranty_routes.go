package warranty

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

	cards := r.Group("/warranties")
	cards.Use(middleware.AuthMiddleware())
	{
		cards.GET("", middleware.RBACAuthorize(rbacService, "warranty", "read"), handler.GetAll)
		cards.GET("/options", middleware.RBACAuthorize(rbacService, "warranty", "read"), handler.GetOptions)
		cards.GET("/:id", middleware.RBACAuthorize(rbacService, "warranty", "read"), handler.GetById)
		if redisClient != nil {
			cards.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "warranty", "manage"),
				handler.Create,
			)
		} else {
			cards.POST("", middleware.RBACAuthorize(rbacService, "warranty", "manage"), handler.Create)
		}
		cards.PUT("/:id/status",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "warranty", "manage"),
			handler.UpdateStatus,
		)
		cards.DELETE("/:id", middleware.RBACAuthorize(rbacService, "warranty", "manage"), handler.Delete)
	}
}
