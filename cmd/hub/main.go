package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huddle/internal/core/ports"
	"huddle/internal/core/services"
	httphandlers "huddle/internal/handlers/http"
	"huddle/internal/infrastructure/gateway"
	"huddle/internal/infrastructure/middleware"
	"huddle/internal/infrastructure/monitoring"
	"huddle/internal/infrastructure/reliability"
	repositories "huddle/internal/infrastructure/repositories"
	"huddle/pkg/circuitbreaker"
	"huddle/pkg/config"
	"huddle/pkg/logger"
	"huddle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/huddle/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "huddle",
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(ctx)
	}()

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	messageRepo := repoFactory.CreateMessageRepository()
	pollRepo := repoFactory.CreatePollRepository()

	// Guard the store behind a shared circuit breaker so a failing backend
	// degrades to fast errors instead of stalling the live feed.
	storeBreaker := reliability.NewStoreBreaker(circuitbreaker.DefaultConfig(), log)
	messageRepo = reliability.NewGuardedMessageRepository(messageRepo, storeBreaker)
	pollRepo = reliability.NewGuardedPollRepository(pollRepo, storeBreaker)

	// Initialize monitoring
	var metrics ports.MetricsRecorder
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector()
	}

	// Initialize the websocket gateway
	gw := gateway.NewServer(gateway.Options{
		PingInterval:      cfg.Gateway.PingInterval,
		PongTimeout:       cfg.Gateway.PongTimeout,
		WriteTimeout:      cfg.Gateway.WriteTimeout,
		SendQueueSize:     cfg.Gateway.SendQueueSize,
		HistoryLimit:      cfg.Chat.HistoryLimit,
		AllowedOrigins:    cfg.Auth.AllowedOrigins,
		RateLimitEnabled:  cfg.RateLimiting.Enabled,
		MessagesPerSecond: cfg.RateLimiting.WebSocket.MessagesPerSecond,
		Burst:             cfg.RateLimiting.WebSocket.Burst,
		MaxMessageSize:    cfg.RateLimiting.WebSocket.MaxMessageSize,
	}, metrics, log)

	// Initialize core services
	roster := services.NewRosterService(log)
	chat := services.NewChatService(roster, gw, messageRepo, metrics, cfg.Chat.MaxMessageLen, log)
	defer chat.Close()
	calls := services.NewCallService(roster, gw, metrics, cfg.Call.RingTimeout, log)
	signals := services.NewSignalService(calls, gw, metrics, log)
	polls := services.NewPollAggregator(roster, gw, pollRepo, metrics, log)

	gw.Bind(gateway.Services{
		Roster:  roster,
		Chat:    chat,
		Calls:   calls,
		Signals: signals,
		Polls:   polls,
	})

	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService)
	uploadHandler := httphandlers.NewUploadHandler(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes, cfg.Upload.AllowedTypes, log)
	messageHandler := httphandlers.NewMessageHandler(chat, cfg.Chat.HistoryLimit)

	// Health checks
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("store", func(ctx context.Context) (bool, error) {
		if err := repoFactory.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, 30*time.Second, 2*time.Second)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	healthChecker.StartBackgroundChecks(bgCtx)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	// Websocket endpoint
	router.GET("/ws", gin.WrapF(gw.HandleWebSocket))

	// REST surface. Auth is optional on the hub routes; a valid bearer token
	// attaches the user identity for handlers that care.
	router.Use(middleware.OptionalAuthMiddleware(authService))
	authHandler.SetupRoutes(router)
	uploadHandler.SetupRoutes(router)
	messageHandler.SetupRoutes(router)

	router.GET("/health", gin.WrapF(healthChecker.Handler))

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{
				"status":    "not_ready",
				"timestamp": time.Now(),
				"error":     err.Error(),
			})
			return
		}

		c.JSON(200, gin.H{
			"status":      "ready",
			"timestamp":   time.Now(),
			"uptime":      time.Since(startTime).String(),
			"connections": gw.ConnectionCount(),
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Huddle hub on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down Huddle hub...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("Huddle hub stopped")
}
