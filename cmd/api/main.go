package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bettercallhomme/voiceline/internal/api/router"
	"github.com/bettercallhomme/voiceline/internal/appointments"
	appconfig "github.com/bettercallhomme/voiceline/internal/config"
	"github.com/bettercallhomme/voiceline/internal/conversation"
	"github.com/bettercallhomme/voiceline/internal/http/handlers"
	"github.com/bettercallhomme/voiceline/internal/messaging"
	"github.com/bettercallhomme/voiceline/internal/notify"
	"github.com/bettercallhomme/voiceline/internal/observability/metrics"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

func main() {
	// Load .env in development; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voiceline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Persistence. Without DATABASE_URL everything runs in memory, which is
	// enough for local development and demos.
	var (
		turnStore conversation.TurnStore
		apptRepo  appointments.Repository
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		turnStore = conversation.NewPostgresTurnStore(db)

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		apptRepo = appointments.NewPostgresRepository(pool)

		logger.Info("postgres persistence enabled")
	} else {
		turnStore = conversation.NewMemoryTurnStore()
		logger.Warn("DATABASE_URL not set, running with in-memory persistence")
	}

	// Call state. Redis survives process restarts mid-call; the in-memory
	// store does not.
	var stateStore conversation.StateStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		stateStore = conversation.NewRedisStateStore(rdb)
		logger.Info("redis call state enabled", "addr", cfg.RedisAddr)
	} else {
		stateStore = conversation.NewMemoryStateStore()
		logger.Warn("REDIS_ADDR not set, call state is in-memory only")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	voiceMetrics := metrics.NewVoiceMetrics(registry)

	// Notifications
	var smsSender notify.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		smsSender = messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	}
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	notifier := notify.NewService(smsSender, emailSender, cfg.OperatorEmail, cfg.BusinessName, logger)

	// Booking and conversation services
	apptService := appointments.NewService(appointments.DefaultRoster(), apptRepo, logger)

	var rephraser *conversation.Rephraser
	if llm := conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel); llm != nil {
		rephraser = conversation.NewRephraser(llm, cfg.BusinessName, cfg.OpenAITimeout, logger)
		logger.Info("openai rephrasing enabled", "model", cfg.OpenAIModel)
	}

	engine := conversation.NewEngine(conversation.EngineConfig{
		States:    stateStore,
		Turns:     turnStore,
		Rules:     conversation.NewRuleResponder(cfg.BusinessName, conversation.DefaultSlotPolicy()),
		Rephraser: rephraser,
		Booker:    apptService,
		Notifier:  notifier,
		Metrics:   voiceMetrics,
		Logger:    logger,
	})

	// Handlers and router
	voiceHandler := handlers.NewVoiceHandler(handlers.VoiceHandlerConfig{
		Engine:            engine,
		AuthToken:         cfg.TwilioAuthToken,
		ValidateSignature: cfg.TwilioValidateSig,
		SpeechAction:      cfg.SpeechWebhookPath,
		BusinessName:      cfg.BusinessName,
		Logger:            logger,
	})
	dashboardHandler := handlers.NewDashboardHandler(apptService, turnStore, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		VoiceHandler:       voiceHandler,
		DashboardHandler:   dashboardHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
