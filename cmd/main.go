package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"findhome/internal/auth"
	"findhome/internal/config"
	"findhome/internal/database"
	"findhome/internal/handlers"
	"findhome/internal/logging"
	"findhome/internal/media"
	"findhome/internal/metrics"
	"findhome/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	auth.InitJWT(cfg.App.JWTSecret, cfg.App.TokenTTL)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise tracing")
	}

	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	if err := database.ApplySQLMigrations(ctx, cfg.GetDSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply SQL migrations")
	}
	if err := database.Bootstrap(ctx, database.GetDB(), cfg.Superuser); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap superuser")
	}

	var store media.Store = media.Disabled{}
	if cfg.Media.Enabled() {
		s3Store, err := media.NewS3Store(ctx, cfg.Media)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure media store")
		}
		store = s3Store
		log.Info().Str("bucket", cfg.Media.Bucket).Msg("Image uploads enabled")
	} else {
		log.Warn().Msg("MEDIA_BUCKET not set, image uploads are disabled")
	}

	var revoker auth.TokenRevoker
	if cfg.Redis.Addr != "" {
		redisRevoker, err := auth.NewRedisRevoker(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		DB:             database.GetDB(),
		Media:          store,
		Revoker:        revoker,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.Server.SecureCookies,
	})

	var handler http.Handler = router
	if cfg.Server.RateLimitPerMinute > 0 {
		handler = httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute)(handler)
	}
	handler = telemetry.Wrap(handler, cfg.Telemetry.ServiceName)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server exited")
}
