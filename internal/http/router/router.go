package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/users-backend/internal/config"
	"github.com/ignatzorin/users-backend/internal/http/handlers"
	"github.com/ignatzorin/users-backend/internal/http/middleware"
	"github.com/ignatzorin/users-backend/internal/service"
)

// SetupRouter собирает таблицу маршрутов сервиса.
func SetupRouter(
	cfg *config.Config,
	userHandler *handlers.UserHandler,
	otpHandler *handlers.OTPHandler,
	healthHandler *handlers.HealthHandler,
	serviceTokens *service.ServiceTokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/health/live", healthHandler.Live)
	r.GET("/health/ready", healthHandler.Ready)
	r.GET("/actuator/health", healthHandler.Health)

	users := r.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.PATCH("/:id/account_status", userHandler.VerifyAccount)
	}

	// Ответ включает хэш пароля, поэтому маршрут закрыт сервисным токеном.
	r.GET("/users/email",
		middleware.ServiceAuthMiddleware(serviceTokens, service.ScopeReadCredentials),
		userHandler.GetByEmail)

	// OTP и сброс пароля дополнительно ограничены по частоте.
	otpRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	r.POST("/auth/otp", otpRateLimit, otpHandler.Request)
	r.PATCH("/users/:id/password", otpRateLimit, userHandler.ResetPassword)

	return r
}
