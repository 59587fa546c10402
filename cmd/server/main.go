package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modecoach-backend/internal/config"
	"modecoach-backend/internal/database"
	"modecoach-backend/internal/handlers"
	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/repository"
	"modecoach-backend/internal/router"
	"modecoach-backend/internal/services"
	"modecoach-backend/internal/websocket"
	"modecoach-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting MODE Coach Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	coachRepo := repository.NewCoachRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	planRepo := repository.NewPlanRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	webhookService := services.NewWebhookService(redisClients.Main, cfg.PlanWebhookURL, cfg.WelcomeWebhookURL)
	authService := services.NewAuthService(userRepo, sessionRepo, coachRepo, planRepo, redisClients.Main, jwtAuth, webhookService, cfg.GoogleClientID)
	entitlementClient := services.NewRevenueCatClient(cfg.RevenueCatAPIKey, cfg.RevenueCatEntitlement)
	billingService := services.NewBillingService(userRepo, entitlementClient)
	chatService := services.NewChatService(
		geminiService,
		sessionRepo,
		coachRepo,
		planRepo,
		webhookService,
		services.NewKeywordIntentClassifier(nil),
		redisClients.Main,
		cfg.FreeMessageLimit,
	)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(chatService, userRepo)
	coachHandler := handlers.NewCoachHandler(coachRepo, userRepo)
	planHandler := handlers.NewPlanHandler(planRepo)
	billingHandler := handlers.NewBillingHandler(billingService, userRepo)
	userHandler := handlers.NewUserHandler(authService, userRepo)
	pagesHandler := handlers.NewPagesHandler()

	// ──── Step 6: Start Webhook Worker Pool ────
	workerPool := worker.NewPool(redisClients.Main, webhookService, 2)
	workerPool.Start()
	log.Println("✓ Webhook worker pool started (2 goroutines)")

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		sessionHandler,
		coachHandler,
		planHandler,
		billingHandler,
		userHandler,
		pagesHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MODE Coach Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
