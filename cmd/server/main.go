/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the workshop planner server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize SQLite store
  3. Create API handler and backlog monitor
  4. Configure HTTP router (CORS origins, optional JWT auth)
  5. Start server with graceful shutdown

CONFIGURATION:
  See config/config.go. Flags override the environment:
  -port    HTTP server port (PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: workshop.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the backlog monitor
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/workshop.db"

  # Require bearer tokens on write routes
  JWT_SECRET=change-me ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/monitor.go: Backlog monitor
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/workshop-planner/api"
	"github.com/warp/workshop-planner/config"
	"github.com/warp/workshop-planner/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and monitor
	handler := api.NewHandler(store)
	monitor := api.NewBacklogMonitor(store, handler.Now)
	monitor.Interval = cfg.RefreshInterval
	handler.Monitor = monitor

	auth := api.NewAuthenticator(cfg.JWTSecret)
	if !auth.Enabled() {
		log.Println("Warning: JWT_SECRET not set, write routes are unauthenticated")
	}

	router := api.NewRouter(handler, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           auth,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	monitor.Start()

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
