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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/simplepub/simple-publish/pkg/simplepublish/api"
	"github.com/simplepub/simple-publish/pkg/simplepublish/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	serverConfig, err := loadServerConfig()
	if err != nil {
		logger.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}
	if serverConfig.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set; admin routes will reject every request")
	}

	if serverConfig.DatabaseType == "postgres" {
		if err := config.PingPostgres(serverConfig.DatabaseURL); err != nil {
			logger.Error("Failed to connect to database", "err", err)
			os.Exit(1)
		}
	}

	svc, err := serverConfig.BuildService(logger)
	if err != nil {
		logger.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: routes(svc, serverConfig, logger),
	}

	go func() {
		logger.Info("Publishing server starting",
			"port", serverConfig.Port,
			"environment", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.StorageType,
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}

func routes(svc simplepublish.Service, cfg *config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(api.RequestID)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if !cfg.IsProduction() {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-admin-token")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", handleHealth(cfg))

	publicHandler := api.NewPublicHandler(svc, logger)
	adminHandler := api.NewAdminHandler(svc, cfg.AdminToken, logger)

	r.Mount("/posts", publicHandler.Routes())
	r.Mount("/admin/posts", adminHandler.Routes())

	return r
}

func handleHealth(cfg *config.ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","environment":%q,"database":%q,"storage":%q}`,
			cfg.Environment, cfg.DatabaseType, cfg.StorageType)
	}
}
