package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether an external dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService     driving.AuthService
	userService     driving.UserService
	indexingService driving.IndexingService
	letterService   driving.LetterService
	jobService      driving.JobService

	// tiers governs per-tier upload limits at the intake boundary
	tiers map[domain.TierName]domain.Tier

	// Infrastructure
	db          Pinger        // PostgreSQL health check (optional)
	redisClient Pinger        // Redis health check (optional)
	embedder    HealthChecker // embedding backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	indexingService driving.IndexingService,
	letterService driving.LetterService,
	jobService driving.JobService,
	tiers map[domain.TierName]domain.Tier,
	db Pinger, // can be nil
	redisClient Pinger, // can be nil
	embedder HealthChecker, // can be nil
) *Server {
	if tiers == nil {
		tiers = domain.DefaultTiers()
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		authService:     authService,
		userService:     userService,
		indexingService: indexingService,
		letterService:   letterService,
		jobService:      jobService,
		tiers:           tiers,
		db:              db,
		redisClient:     redisClient,
		embedder:        embedder,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Admin-only user management
	s.router.Handle("POST /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateUser))))

	// Resume indexing (authenticated)
	s.router.Handle("POST /api/v1/resumes/index",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleIndexResume)))

	// Letter generation (authenticated)
	s.router.Handle("PUT /api/v1/letters/generate",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGenerateLetter)))
	s.router.Handle("GET /api/v1/letters/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetLetter)))

	// Job status (authenticated)
	s.router.Handle("GET /api/v1/jobs",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListJobs)))
	s.router.Handle("GET /api/v1/jobs/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetJob)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
