package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shenikar/safe_route_system/docs"
	"github.com/shenikar/safe_route_system/internal/auth"
	"github.com/shenikar/safe_route_system/internal/config"
	v1 "github.com/shenikar/safe_route_system/internal/handler/http/v1"
	"github.com/shenikar/safe_route_system/internal/repository"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/shenikar/safe_route_system/internal/webhook"
	"github.com/shenikar/safe_route_system/pkg/metrics"
	"github.com/shenikar/safe_route_system/pkg/ors"
	"github.com/shenikar/safe_route_system/pkg/postgres"
	redisclient "github.com/shenikar/safe_route_system/pkg/redis"
)

const shutdownTimeout = 5 * time.Second

// serveCommand создаёт подкоманду 'serve', которая запускает HTTP API
func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := a.cfg.RequireJWT(); err != nil {
		return err
	}
	return runServer(ctx, a.cfg, a.log)
}

func runServer(parent context.Context, cfg *config.Config, log *logrus.Logger) error {
	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// События валидации отправляются, только если настроен вебхук
	var (
		publisher  webhook.EventPublisher
		workerDone <-chan struct{}
	)
	if cfg.WebhookURL != "" {
		publisher = webhook.NewRedisEventPublisher(redisClient)
		workerDone = webhook.NewWorker(redisClient, log, cfg).Start(ctx)
	} else {
		log.Warn("WEBHOOK_URL is not set, validation events are not delivered")
	}

	// Инициализация хранилища и сервисов
	store := repository.NewStore(dbpool)
	cache := repository.NewHazardCache(redisClient, cfg.HazardCacheTTL)
	engine := ors.NewClient(&http.Client{Timeout: cfg.ORSTimeout}, cfg.ORSBaseURL, cfg.ORSAPIKey)

	userService := service.NewUserService(store, log)
	reportService := service.NewReportService(store, cache, log, cfg, m)
	validationService := service.NewValidationService(store, cache, publisher, log, m)
	routeService := service.NewRouteService(reportService, engine, log, cfg, m)

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Users:      userService,
		Reports:    reportService,
		Validation: validationService,
		Routes:     routeService,
	}, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), log)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case err := <-serverErr:
		stop()
		waitWorker(workerDone, shutdownTimeout, log)
		return fmt.Errorf("error starting HTTP server: %w", err)
	case <-ctx.Done():
	}
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	// Воркер должен завершиться до закрытия Redis клиента
	waitWorker(workerDone, shutdownTimeout, log)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}

// waitWorker ждёт остановки воркера вебхуков не дольше timeout; done равен nil, если воркер не запускался
func waitWorker(done <-chan struct{}, timeout time.Duration, log *logrus.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		log.Info("Webhook worker stopped")
	case <-time.After(timeout):
		log.Warn("Webhook worker did not stop before shutdown timeout")
	}
}

// requestLogger пишет по одной записи logrus на каждый запрос
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(started).String(),
		}).Info("HTTP request")
	}
}
