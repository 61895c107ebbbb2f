package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-catalog-service/internal/api"
	"shop-catalog-service/internal/auth"
	"shop-catalog-service/internal/catalog"
	"shop-catalog-service/internal/config"
	"shop-catalog-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const defaultAppName = "ShopCatalogService"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize database connection: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Printf("WARN: Error closing database on deferred cleanup: %v", err)
		}
	}()

	if err := db.PingContext(context.Background()); err != nil {
		logger.Fatalf("FATAL: Failed to ping database: %v", err)
	}
	logger.Println("INFO: Database connection established successfully.")
	dbStore := store.NewPostgresStore(db)

	// --- Wire Core Components ---
	catalogService := catalog.NewService(dbStore, dbStore)
	roleSource := auth.NewHeaderRoleSource(cfg.Auth.RoleHeader)
	httpAPIHandler := api.NewHTTPHandler(catalogService, dbStore, dbStore, roleSource)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	registerHealthCheck(httpRouter, logger, db)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, dbStore, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	logger.Println("INFO: Base HTTP middleware registered.")
}

func registerHealthCheck(router *chi.Mux, logger *log.Logger, db *sql.DB) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
			logger.Printf("WARN: Health check DB ping failed: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
		})
	})
	logger.Printf("INFO: HTTP health check registered at %s", healthPath)
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	dbStore *store.PostgresStore,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	if dbStore != nil {
		if err := dbStore.Close(); err != nil {
			logger.Printf("WARN: Error closing database connection: %v", err)
		}
	}

	logger.Println("INFO: Graceful shutdown sequence completed.")
}
