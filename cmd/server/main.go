package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/users-backend/internal/config"
	"github.com/ignatzorin/users-backend/internal/db"
	"github.com/ignatzorin/users-backend/internal/gateway"
	httpHandlers "github.com/ignatzorin/users-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/users-backend/internal/http/router"
	"github.com/ignatzorin/users-backend/internal/logger"
	"github.com/ignatzorin/users-backend/internal/repository"
	"github.com/ignatzorin/users-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе (с ретраями на старте) и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, cfg.DBConnectDelay)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	serviceTokens := service.NewServiceTokenManager(cfg.ServiceJWTSecret)
	otpGateway := gateway.NewOTPClient(cfg.OTPGatewayURL, cfg.OTPGatewayTimeout)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	otpRepo := repository.NewOTPRepository(dbConn)

	// Сервисы.
	userService := service.NewUserService(userRepo)
	otpService := service.NewOTPService(otpRepo, userRepo, otpGateway, cfg.ResetURLBase)
	resetService := service.NewPasswordResetService(otpGateway, otpService, userRepo)

	// HTTP хэндлеры.
	userHandler := httpHandlers.NewUserHandler(userService, resetService)
	otpHandler := httpHandlers.NewOTPHandler(otpService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, userHandler, otpHandler, healthHandler, serviceTokens)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
