package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/city_alert/docs"
	"github.com/shenikar/city_alert/internal/config"
	"github.com/shenikar/city_alert/internal/gemini"
	"github.com/shenikar/city_alert/internal/geocoding"
	v1 "github.com/shenikar/city_alert/internal/handler/http/v1"
	"github.com/shenikar/city_alert/internal/notify"
	"github.com/shenikar/city_alert/internal/repository"
	"github.com/shenikar/city_alert/internal/service"
	"github.com/shenikar/city_alert/internal/storage"
	"github.com/shenikar/city_alert/pkg/logger"
	"github.com/shenikar/city_alert/pkg/postgres"
	redisclient "github.com/shenikar/city_alert/pkg/redis"
)

// @title CityAlert API
// @version 1.0
// @description Municipal incident reporting backend: incidents, departments, email alerts and the reporting assistant.
// @host localhost:8080
// @BasePath /
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Redis необязателен: без адреса кеш инцидентов выключен
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	} else {
		log.Info("REDIS_ADDR is not set, incident cache disabled")
	}

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL)
	departmentRepo := repository.NewDepartmentRepository(dbpool)
	subscriptionRepo := repository.NewSubscriptionRepository(dbpool)

	// Внешние клиенты
	geocoder := geocoding.NewClient(cfg.GeocodingAPIURL, cfg.MapsAPIKey, cfg.GeocodingTimeout, log)
	geminiClient := gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.GeminiTimeout, log)
	if !geminiClient.Configured() {
		log.Warn("GEMINI_API_KEY is not set, chat requests will fail")
	}

	images, err := storage.NewImageStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	if !cfg.SMTPConfigured() {
		log.Warn("SMTP settings are incomplete, emails will not be delivered")
	}
	mailer := notify.NewMailer(notify.SMTPConfig{
		Server:      cfg.SMTPServer,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
		Timeout:     cfg.SMTPTimeout,
	}, log)
	dispatcher := notify.NewDispatcher(mailer, subscriptionRepo, cfg.BaseURL, log)

	// Инициализация сервисов
	incidentService := service.NewIncidentService(
		incidentRepo,
		departmentRepo,
		geocoder,
		images,
		dispatcher,
		service.IncidentOptions{
			DuplicateWindow:   cfg.DuplicateWindow,
			NotifySubscribers: cfg.NotifySubscribers,
		},
		log,
	)
	departmentService := service.NewDepartmentService(departmentRepo, incidentRepo, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, dispatcher, log)
	chatService := service.NewChatService(geminiClient, log)

	if err := departmentService.SeedDefaults(ctx); err != nil {
		log.Fatalf("Failed to seed departments: %v", err)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Incidents:     incidentService,
		Departments:   departmentService,
		Subscriptions: subscriptionService,
		Chat:          chatService,
	}, images, log, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           handler.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
