package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"assetmgt/config"
	"assetmgt/database"
	"assetmgt/handlers"
	"assetmgt/lifecycle"
	"assetmgt/middleware"
	"assetmgt/routes"
	"assetmgt/store"
	"assetmgt/tracing"
)

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.Set(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	config.LoadConfig()

	logger := newLogger(config.LogLevel)
	defer logger.Sync()

	// Repository backend
	var st *store.Store
	switch config.Store {
	case "memory":
		st = store.NewMemory()
		logger.Info("using in-memory store")
	default:
		if err := database.Connect(logger); err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		st = store.NewMongo(database.Client, config.MongoDB)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureDefaults(ctx, st); err != nil {
			cancel()
			logger.Fatal("failed to seed defaults", zap.Error(err))
		}
		cancel()
	}

	engine := lifecycle.NewEngine(st, logger)

	middleware.Init(st.Users, logger)
	handlers.Init(st, engine, logger)

	shutdownTracing, err := tracing.Init(context.Background(), logger, "assetmgt")
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	// Global middlewares (order matters!)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)

	handler := otelhttp.NewHandler(router, "assetmgt")

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("asset management backend running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}

	database.Disconnect(logger)
	logger.Info("server stopped gracefully")
}
