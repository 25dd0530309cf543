package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/ai"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/auth"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/blob"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/listing"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/memory"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/postgres"
	redisadapter "github.com/lettersmith/lettersmith-core/internal/adapters/driven/redis"
	httpserver "github.com/lettersmith/lettersmith-core/internal/adapters/driving/http"
	"github.com/lettersmith/lettersmith-core/internal/config"
	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
	"github.com/lettersmith/lettersmith-core/internal/core/services"
	"github.com/lettersmith/lettersmith-core/internal/worker"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log.Printf("lettersmith-core %s starting", version)

	// Configuration from environment
	jwtSecret := getEnv("JWT_SECRET", "development-secret-change-in-production")
	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	blobPath := getEnv("BLOB_PATH", "lettersmith.db")
	configPath := getEnv("CONFIG_PATH", "config.yaml")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL (optional) =====
	var db *postgres.DB
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.DefaultConfig(databaseURL)
		dbConfig.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", dbConfig.MaxOpenConns)
		dbConfig.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", dbConfig.MaxIdleConns)
		dbConfig.ConnMaxLifetime = time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC",
			int(dbConfig.ConnMaxLifetime.Seconds()))) * time.Second
		dbConfig.ConnMaxIdleTime = time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC",
			int(dbConfig.ConnMaxIdleTime.Seconds()))) * time.Second
		db, err = postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("PostgreSQL connected and schema initialized")
	}

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Blob store =====
	blobStore, err := blob.NewBoltStore(blobPath)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}
	defer blobStore.Close()

	// ===== Stores (PostgreSQL if available, otherwise in-memory) =====
	var (
		jobStore         driven.JobStore
		userStore        driven.UserStore
		reservationStore driven.ReservationStore
		sessionStore     driven.SessionStore
	)
	if db != nil {
		jobStore = postgres.NewJobStore(db)
		userStore = postgres.NewUserStore(db)
		log.Println("Using PostgreSQL job and user stores")
	} else {
		jobStore = memory.NewJobStore()
		userStore = memory.NewUserStore()
		log.Println("Using in-memory job and user stores")
	}

	// Quota reservations and sessions prefer Redis for cross-instance
	// visibility, then PostgreSQL, then memory.
	switch {
	case redisClient != nil:
		reservationStore = redisadapter.NewReservationStore(redisClient)
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis reservation and session stores")
	case db != nil:
		reservationStore = postgres.NewReservationStore(db)
		sessionStore = memory.NewSessionStore()
		log.Println("Using PostgreSQL reservation store")
	default:
		reservationStore = memory.NewReservationStore()
		sessionStore = memory.NewSessionStore()
		log.Println("Using in-memory reservation and session stores")
	}

	// ===== External AI services =====
	embedder, err := ai.NewOpenAIEmbedding(ai.OpenAIEmbeddingConfig{
		APIKey:    os.Getenv(cfg.Embedder.APIKeyEnv),
		Model:     cfg.Embedder.Model,
		BaseURL:   cfg.Embedder.BaseURL,
		BatchSize: cfg.Embedder.BatchSize,
	})
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	log.Printf("Embedding with model %s", embedder.Model())

	letterWriter, err := ai.NewGeminiLetterWriter(ai.GeminiLetterWriterConfig{
		APIKey:  os.Getenv(cfg.LetterWriter.APIKeyEnv),
		Model:   cfg.LetterWriter.Model,
		BaseURL: cfg.LetterWriter.BaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create letter writer: %v", err)
	}

	fetcher := listing.NewFetcher(cfg.Listing.Selectors,
		time.Duration(cfg.Listing.TimeoutSecs)*time.Second)

	// ===== Auth =====
	authAdapter := auth.NewAdapter(jwtSecret)

	// ===== Worker pool =====
	pool := worker.New(worker.Config{
		Workers:   cfg.Worker.Workers,
		QueueSize: cfg.Worker.QueueSize,
		Logger:    slog.Default(),
	})
	pool.Start(ctx)
	defer pool.Stop()

	// ===== Services (core business logic) =====
	admission := services.NewAdmissionService(reservationStore, cfg.Tiers, slog.Default())
	retriever := services.NewRetriever(embedder)
	authService := services.NewAuthService(userStore, sessionStore, authAdapter)
	userService := services.NewUserService(userStore, authAdapter)
	jobService := services.NewJobService(jobStore)
	indexingService := services.NewIndexingService(jobStore, blobStore, embedder, admission, pool, slog.Default())
	letterService := services.NewLetterService(services.LetterServiceConfig{
		Jobs:      jobStore,
		Blobs:     blobStore,
		Fetcher:   fetcher,
		Writer:    letterWriter,
		Retriever: retriever,
		Admission: admission,
		Pool:      pool,
		Logger:    slog.Default(),
	})

	// ===== Bootstrap admin user =====
	bootstrapAdmin(ctx, userStore, userService)

	// ===== HTTP server =====
	serverCfg := httpserver.Config{
		Host:    getEnv("HOST", "0.0.0.0"),
		Port:    port,
		Version: version,
	}

	var dbPinger, redisPing httpserver.Pinger
	if db != nil {
		dbPinger = db
	}
	if redisClient != nil {
		redisPing = redisPinger{client: redisClient}
	}

	server := httpserver.NewServer(
		serverCfg,
		authService,
		userService,
		indexingService,
		letterService,
		jobService,
		cfg.Tiers,
		dbPinger,
		redisPing,
		embedder,
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// bootstrapAdmin creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when the user store is empty.
func bootstrapAdmin(ctx context.Context, userStore driven.UserStore, userService *services.UserService) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	count, err := userStore.Count(ctx)
	if err != nil {
		log.Printf("Warning: could not check user count: %v", err)
		return
	}
	if count > 0 {
		return
	}

	if _, err := userService.Create(ctx, email, "Administrator", password, domain.TierAdmin); err != nil {
		log.Printf("Warning: failed to bootstrap admin user: %v", err)
		return
	}
	log.Printf("Bootstrapped admin user %s", email)
}

// redisPinger adapts *redis.Client to the health-check interface
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
