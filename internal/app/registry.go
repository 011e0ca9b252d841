package app

import (
	"database/sql"
	"path/filepath"

	"go-erp/internal/leavebalance"
	"go-erp/internal/leaverequest"
	"go-erp/internal/leavetype"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/notification"
	"go-erp/internal/rbac"
	"go-erp/internal/rbac/infra"
	"go-erp/internal/shared/counter"
	"go-erp/internal/warranty"
	"go-erp/internal/warrantyclaim"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	leaveBalanceRepo := leavebalance.NewRepository(db)
	leaveRequestRepo := leaverequest.NewRepository(db)
	warrantyRepo := warranty.NewRepository(gormDB)
	warrantyClaimRepo := warrantyclaim.NewRepository(db)
	notificationRepo := notification.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	leaveTypeService := leavetype.NewService(leaveTypeRepo)
	leaveBalanceService := leavebalance.NewService(leaveBalanceRepo)
	leaveRequestService := leaverequest.NewService(db, leaveRequestRepo, leaveBalanceRepo, counterRepo, outboxRepo)
	warrantyService := warranty.NewService(warrantyRepo, counterRepo, rdb)
	warrantyClaimService := warrantyclaim.NewService(db, warrantyClaimRepo, counterRepo, outboxRepo)
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	leaveBalanceHandler := leavebalance.NewHandler(leaveBalanceService)
	leaveRequestHandler := leaverequest.NewHandlerWithRedis(leaveRequestService, rdb)
	warrantyHandler := warranty.NewHandlerWithRedis(warrantyService, rdb)
	warrantyClaimHandler := warrantyclaim.NewHandlerWithRedis(warrantyClaimService, rdb)
	notificationHandler := notification.NewHandler(notificationService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService)
		leavebalance.RegisterRoutes(api, leaveBalanceHandler, rbacService)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, rbacService, rdb)
		warranty.RegisterRoutes(api, warrantyHandler, rbacService, rdb)
		warrantyclaim.RegisterRoutes(api, warrantyClaimHandler, rbacService, rdb)
		notification.RegisterRoutes(api, notificationHandler)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
