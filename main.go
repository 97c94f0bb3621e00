package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/chaperone-app/chaperone-api/cache"
	"github.com/chaperone-app/chaperone-api/config"
	"github.com/chaperone-app/chaperone-api/generator"
	"github.com/chaperone-app/chaperone-api/handlers"
	"github.com/chaperone-app/chaperone-api/middleware"
	"github.com/chaperone-app/chaperone-api/store"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET_KEY not set")
	}

	db, err := config.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	dataStore := store.New(db)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, cfg.CacheTimeout)
	defer cacheClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cacheClient.Ensure(ctx); err != nil {
		// The service stays up: every request degrades to store-only reads.
		logger.Warn("cache unreachable at startup", zap.Error(err))
	} else {
		logger.Info("cache ready", zap.String("namespace", cache.Namespace))
	}
	cancel()

	api := &handlers.API{
		Store:     dataStore,
		Cache:     cacheClient,
		Generator: generator.NewGemini(cfg.GeminiAPIKey, cfg.GeminiBaseURL),
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
	}
	requireUser := middleware.RequireUser(dataStore, cfg.JWTSecret)

	mux := http.NewServeMux()

	// Auth and users
	mux.HandleFunc("POST /login/", api.Login)
	mux.HandleFunc("POST /users/", api.CreateUser)
	mux.HandleFunc("GET /users/", api.GetUsers)
	mux.HandleFunc("GET /users/{id}/", api.GetUserByID)

	// Vocabularies
	mux.HandleFunc("POST /vocabularies/", requireUser(api.CreateVocabulary))
	mux.HandleFunc("GET /vocabularies/", requireUser(api.GetVocabularies))
	mux.HandleFunc("GET /vocabularies/{id}/", requireUser(api.GetVocabularyByID))

	// Associations
	mux.HandleFunc("POST /associations/", requireUser(api.CreateAssociation))
	mux.HandleFunc("GET /associations/", requireUser(api.GetAssociations))
	mux.HandleFunc("GET /associations/{id}", requireUser(api.GetAssociationByID))
	mux.HandleFunc("PUT /associations/{id}/correct", requireUser(api.MarkCorrect))
	mux.HandleFunc("PUT /associations/{id}/incorrect", requireUser(api.MarkIncorrect))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	handler := middleware.RequestLogger(logger)(corsHandler)

	addr := "0.0.0.0:" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
