// Package http wires the admin API: handlers, middleware, and routes.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/application/billing/usecases"
	"planpay/internal/infrastructure/auth"
	"planpay/internal/infrastructure/config"
	"planpay/internal/infrastructure/ratelimit"
	"planpay/internal/infrastructure/repository"
	"planpay/internal/interfaces/http/handlers"
	"planpay/internal/interfaces/http/middleware"
	shareddb "planpay/internal/shared/db"
	"planpay/internal/shared/logger"

	_ "planpay/docs"
)

// Router represents the HTTP router configuration
type Router struct {
	engine         *gin.Engine
	billingHandler *handlers.BillingHandler
	tokenHandler   *handlers.TokenHandler
	authMiddleware *middleware.AuthMiddleware
	chargeLimiter  gin.HandlerFunc
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	tokenRepo := repository.NewPaymentTokenRepository(db)
	scheduleRepo := repository.NewBillingScheduleRepository(db)
	attemptRepo := repository.NewBillingAttemptRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	gateway := paymentgateway.NewCustomPayClient(&cfg.Gateway, log)
	txManager := shareddb.NewTransactionManager(db)

	syncCommissionUC := usecases.NewSyncCommissionUseCase(commissionRepo, log)
	chargeUC := usecases.NewChargeScheduleUseCase(scheduleRepo, tokenRepo, attemptRepo, gateway, syncCommissionUC, log)
	listFailedUC := usecases.NewListFailedSchedulesUseCase(scheduleRepo, attemptRepo, log)
	reactivateUC := usecases.NewReactivateScheduleUseCase(scheduleRepo, log)
	pauseUC := usecases.NewPauseScheduleUseCase(scheduleRepo, log)
	resumeUC := usecases.NewResumeScheduleUseCase(scheduleRepo, log)
	exportUC := usecases.NewExportBillingLogUseCase(attemptRepo, log)
	replaceTokenUC := usecases.NewReplaceTokenUseCase(tokenRepo, scheduleRepo, gateway, txManager, log)

	billingHandler := handlers.NewBillingHandler(chargeUC, listFailedUC, reactivateUC, pauseUC, resumeUC, exportUC)
	tokenHandler := handlers.NewTokenHandler(replaceTokenUC)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, log)

	limiter := ratelimit.NewRedisRateLimiter(redisClient)
	chargeLimiter := middleware.ChargeRateLimit(limiter, ratelimit.ChargeLimit)

	return &Router{
		engine:         engine,
		billingHandler: billingHandler,
		tokenHandler:   tokenHandler,
		authMiddleware: authMiddleware,
		chargeLimiter:  chargeLimiter,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(log logger.Interface) {
	r.engine.Use(middleware.Logging(log))
	r.engine.Use(middleware.Recovery())

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	admin := r.engine.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth())
	{
		billing := admin.Group("/billing")
		{
			billing.GET("/failed", r.billingHandler.ListFailed)
			billing.GET("/attempts", r.billingHandler.ExportAttempts)

			schedules := billing.Group("/schedules", r.authMiddleware.RequireAdmin())
			{
				schedules.POST("/:id/charge", r.chargeLimiter, r.billingHandler.ChargeSchedule)
				schedules.POST("/:id/reactivate", r.billingHandler.ReactivateSchedule)
				schedules.POST("/:id/pause", r.billingHandler.PauseSchedule)
				schedules.POST("/:id/resume", r.billingHandler.ResumeSchedule)
			}
		}

		admin.POST("/subscribers/:id/token",
			r.authMiddleware.RequireAdmin(), r.chargeLimiter, r.tokenHandler.ReplaceToken)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
