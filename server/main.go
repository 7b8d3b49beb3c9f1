package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weddingrsvp/api/routes"
	"weddingrsvp/internal/events"
	"weddingrsvp/internal/notifications"
	"weddingrsvp/internal/rsvp"
	"weddingrsvp/internal/sheets"
	"weddingrsvp/internal/shared/config"
	"weddingrsvp/internal/shared/middleware"
	"weddingrsvp/pkg/cache"
	"weddingrsvp/pkg/logger"
	"weddingrsvp/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title       Wedding RSVP API
// @version     1.0
// @description Collects RSVPs for the wedding events and records them in the guest spreadsheet.
// @BasePath    /api/v1
func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)
	appLogger = logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	appLogger.Info("Starting weddingrsvp",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	eventRepo, err := events.LoadRepository(cfg.EventsFile)
	if err != nil {
		appLogger.Error("Failed to load events", slog.Any("error", err))
		os.Exit(1)
	}

	// Redis is optional; without it rate limits are kept in memory
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(context.Background(), cache.Config{
			Address:  cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Error("Redis unavailable, continuing without it", slog.Any("error", err))
		} else {
			defer redisClient.Close()
		}
	}

	limiter, closeLimiter := newRateLimiter(cfg, redisClient, appLogger)
	defer closeLimiter()

	store := sheets.NewClient(sheets.Config{
		URL:     cfg.Sheets.AppsScriptURL,
		Timeout: cfg.Sheets.Timeout,
	})
	if !store.Configured() {
		appLogger.Warn("GOOGLE_APPS_SCRIPT_URL not set, RSVPs will be rejected")
	}

	sender := notifications.NewConfirmationSender(
		notifications.NewSMTPMailer(notifications.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			FromName: cfg.Email.FromName,
			UseTLS:   true,
			Timeout:  cfg.Email.Timeout,
		}),
		notifications.ConfirmationConfig{
			CoupleName: cfg.Wedding.Name,
			Timezone:   cfg.Wedding.CalendarTimezone,
			LogoURL:    cfg.Email.LogoURL,
			FooterLine: cfg.Email.FooterTag,
		},
		appLogger.WithComponent("confirmation"),
	)

	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()

	dispatcher, stopDispatcher := newDispatcher(notificationCtx, cfg, sender, appLogger)

	rsvpService := rsvp.NewService(store, eventRepo, dispatcher, appLogger.WithComponent("rsvp"))

	deps := routes.Dependencies{
		Events:  eventRepo,
		RSVP:    rsvpService,
		Limiter: limiter,
		Logger:  appLogger,
	}
	if redisClient != nil {
		deps.Health = cache.NewRedisStore(redisClient, "weddingrsvp:")
	}

	router := setupRouter(cfg, deps, appLogger)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("rsvp", fmt.Sprintf("http://localhost:%s%s/rsvp", cfg.Port, cfg.GetAPIBasePath())),
			slog.Int("events", len(eventRepo.FindAll())),
			slog.Bool("redis", redisClient != nil),
			slog.Bool("rate_limiting", limiter != nil),
			slog.Bool("kafka", cfg.Notifications.UseKafka()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	// Let queued confirmations go out before exiting
	stopDispatcher(ctx)

	appLogger.Info("Server exited gracefully")
}

func newRateLimiter(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) (ratelimit.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		log.Info("Rate limiting disabled")
		return nil, func() {}
	}

	rlConfig := &ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		WindowDuration:  cfg.RateLimit.WindowDuration,
		DefaultRequests: cfg.RateLimit.DefaultRequests,
		PublicRequests:  cfg.RateLimit.PublicRequests,
		RSVPRequests:    cfg.RateLimit.RSVPRequests,
		HealthRequests:  cfg.RateLimit.HealthRequests,
		WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
	}

	log.Info("Rate limiter initialized",
		slog.Bool("redis", redisClient != nil),
		slog.Duration("window", rlConfig.WindowDuration),
		slog.Int("rsvp_requests", rlConfig.RSVPRequests),
	)

	if redisClient != nil {
		return ratelimit.NewRateLimiter(redisClient, rlConfig), func() {}
	}
	memory := ratelimit.NewMemoryLimiter(rlConfig)
	return memory, memory.Close
}

// newDispatcher picks Kafka when brokers are configured, falling back to in-process sends
func newDispatcher(ctx context.Context, cfg *config.Config, sender notifications.Sender, log *logger.Logger) (notifications.Dispatcher, func(context.Context)) {
	async := func() (notifications.Dispatcher, func(context.Context)) {
		d := notifications.NewAsyncDispatcher(sender, cfg.Email.Timeout, log.WithComponent("dispatcher"))
		return d, func(ctx context.Context) {
			if err := d.Wait(ctx); err != nil {
				log.Warn("Confirmation emails still in flight at shutdown", slog.Any("error", err))
			}
		}
	}

	if !cfg.Notifications.UseKafka() {
		return async()
	}

	n := cfg.Notifications
	producer, err := notifications.NewKafkaDispatcher(notifications.DefaultKafkaProducerConfig(n.KafkaBrokers, n.Topic), log)
	if err != nil {
		log.Error("Kafka producer unavailable, sending confirmations in-process", slog.Any("error", err))
		return async()
	}

	consumer, err := notifications.NewConfirmationConsumer(
		notifications.DefaultConsumerConfig(n.KafkaBrokers, n.ConsumerGroupID, n.Topic), sender, log)
	if err != nil {
		log.Error("Kafka consumer unavailable, sending confirmations in-process", slog.Any("error", err))
		_ = producer.Close()
		return async()
	}
	consumer.Start(ctx, n.NumConsumerWorkers)

	return producer, func(ctx context.Context) {
		if err := producer.Wait(ctx); err != nil {
			log.Warn("Confirmation jobs still publishing at shutdown", slog.Any("error", err))
		}
		if err := producer.Close(); err != nil {
			log.Error("Error closing Kafka producer", slog.Any("error", err))
		}
		if err := consumer.Stop(); err != nil {
			log.Error("Error stopping confirmation consumer", slog.Any("error", err))
		}
	}
}

func setupRouter(cfg *config.Config, deps routes.Dependencies, log *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	routes.NewRouter(cfg, deps).SetupRoutes(engine)

	return engine
}
