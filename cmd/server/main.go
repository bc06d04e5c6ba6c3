package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daypass/chat-gateway-go/internal/config"
	"github.com/daypass/chat-gateway-go/internal/database"
	"github.com/daypass/chat-gateway-go/internal/gate"
	"github.com/daypass/chat-gateway-go/internal/handler"
	"github.com/daypass/chat-gateway-go/internal/jobs"
	"github.com/daypass/chat-gateway-go/internal/middleware"
	"github.com/daypass/chat-gateway-go/internal/ratelimit"
	"github.com/daypass/chat-gateway-go/internal/redis"
	"github.com/daypass/chat-gateway-go/internal/repository"
	"github.com/daypass/chat-gateway-go/internal/sanitize"
	"github.com/daypass/chat-gateway-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("APP_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		limitStore = ratelimit.NewRedisStore(redisClient.Client)
	} else {
		log.Info().Msg("using in-memory rate limit store")
		limitStore = ratelimit.NewMemoryStore()
	}

	quotas := map[string]ratelimit.Quota{
		"/v1/chat/completions":   {MaxRequests: config.ChatRateLimitPerMin, Window: config.RateLimitWindow},
		"/v1/embeddings":         {MaxRequests: config.EmbeddingsRateLimitPerMin, Window: config.RateLimitWindow},
		"/v1/images/generations": {MaxRequests: config.ImageRateLimitPerMin, Window: config.RateLimitWindow},
		"/v1/conversations":      {MaxRequests: config.ConversationRateLimitPerMin, Window: config.RateLimitWindow},
	}
	limiter := ratelimit.New(limitStore, quotas, ratelimit.Quota{
		MaxRequests: config.DefaultRateLimitPerMin,
		Window:      config.RateLimitWindow,
	})

	securityGate := gate.New(limiter, sanitize.NewDetector(), sanitize.NewSanitizer(), true)

	sessionRepo := repository.NewAccessSessionRepository(db.DB)
	convRepo := repository.NewConversationRepository(db.DB)

	sessionService := service.NewSessionService(db, sessionRepo)
	convService := service.NewConversationService(convRepo)

	var modelClient service.ModelClient
	if cfg.UpstreamModelURL != "" {
		modelClient = service.NewHTTPModelClient(cfg.UpstreamModelURL, cfg.UpstreamModelAPIKey, config.ServerRequestTimeout)
	}
	chatService := service.NewChatService(modelClient)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthTokenSecret)
	signatureMiddleware := middleware.NewWebhookSignatureMiddleware(cfg.PaymentWebhookSecret)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	chatHandler := handler.NewChatHandler(securityGate, sessionService, chatService)
	convHandler := handler.NewConversationHandler(securityGate, convService)
	sessionHandler := handler.NewSessionHandler(securityGate, sessionService, cfg.SessionDuration())
	paymentHandler := handler.NewPaymentHandler(sessionService, cfg.SessionDuration())

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		chatHandler.Register(r)
		r.Mount("/conversations", convHandler.Routes())
		r.Route("/sessions", func(r chi.Router) {
			r.Use(securityHeadersMiddleware.Handler)
			r.Mount("/", sessionHandler.Routes())
		})
	})

	r.Route("/v1/payments", func(r chi.Router) {
		r.Use(signatureMiddleware.Handler)
		r.Mount("/", paymentHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(sessionRepo, limiter, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
