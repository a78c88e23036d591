package app

import (
	"database/sql"
	"path/filepath"

	"go-tams/internal/application"
	"go-tams/internal/auth"
	"go-tams/internal/messaging/kafka"
	"go-tams/internal/notification"
	"go-tams/internal/position"
	"go-tams/internal/rbac"
	"go-tams/internal/rbac/infra"
	"go-tams/internal/salary"
	"go-tams/internal/shared/clock"
	"go-tams/internal/student"
	"go-tams/internal/timesheet"

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
	clk := clock.System()

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	studentRepo := student.NewRepository(gormDB)
	positionRepo := position.NewRepository(gormDB)
	applicationRepo := application.NewRepository(gormDB)
	timesheetRepo := timesheet.NewRepository(gormDB)
	salaryRepo := salary.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("config", "rbac_model.conf"),
		filepath.Join("config", "rbac_policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, studentRepo)
	positionLedger := position.NewLedger(positionRepo)
	positionService := position.NewService(db, positionRepo, clk, rdb)
	applicationService := application.NewService(db, applicationRepo, positionRepo, positionLedger, studentRepo, outboxRepo, clk, rdb)
	timesheetService := timesheet.NewService(db, timesheetRepo, applicationRepo, positionRepo, outboxRepo, clk)
	salaryService := salary.NewService(db, salaryRepo, timesheetRepo, positionRepo, clk)
	notificationService := notification.NewService(notificationRepo, positionRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	positionHandler := position.NewHandler(positionService)
	applicationHandler := application.NewHandler(applicationService)
	timesheetHandler := timesheet.NewHandler(timesheetService)
	salaryHandler := salary.NewHandler(salaryService)
	notificationHandler := notification.NewHandler(notificationService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		position.RegisterRoutes(api, positionHandler, rbacService)
		application.RegisterRoutes(api, applicationHandler, rbacService)
		timesheet.RegisterRoutes(api, timesheetHandler, rbacService)
		salary.RegisterRoutes(api, salaryHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
