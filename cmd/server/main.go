package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"submission_service/internal/api"
	"submission_service/internal/cache"
	"submission_service/internal/config"
	"submission_service/internal/events"
	"submission_service/internal/handler"
	"submission_service/internal/logging"
	"submission_service/internal/middleware"
	"submission_service/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	logger := logging.New(zapLogger)

	cfg, err := config.New()
	if err != nil {
		logger.Fatal(ctx, "cannot create config", zap.Error(err))
	}

	apiClient := api.NewClient(cfg.FeedbackAPIBaseURL, cfg.FeedbackAPITimeout)

	redisConn := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	pageCache := cache.NewPageCache(redisConn, cfg.PageCacheTTL)

	producer, err := events.NewProducer(events.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.ConfirmationTopic,
	})
	if err != nil {
		logger.Fatal(ctx, "cannot create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	svc := service.New(apiClient, apiClient, apiClient, apiClient, apiClient, apiClient, pageCache, producer, logger)
	submissionHandler := handler.NewSubmissionHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, 10<<20) // 10 MB
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/submission", func(r chi.Router) {
		submissionHandler.RegisterRoutes(r)
	})

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port))

	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
}
