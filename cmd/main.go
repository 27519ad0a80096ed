package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"qb_bulkdelete/internal/config"
	"qb_bulkdelete/internal/infrastructure"
	"qb_bulkdelete/internal/interfaces/http"
	"qb_bulkdelete/internal/repository"
	"qb_bulkdelete/internal/usecases"
)

func main() {
	// Load .env file (optional in production, env vars win)
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Configuration error: " + err.Error())
	}

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}
	defer pgClient.Close()

	// Initialize Repositories
	userRepo := repository.NewUserRepository(pgClient.Pool)
	creditRepo := repository.NewCreditRepository(pgClient.Pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pgClient.Pool)

	// External clients & session store
	sessionManager := infrastructure.NewSessionManager()
	qbClient := infrastructure.NewQuickBooksClient()
	stripeClient := infrastructure.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	notifier := infrastructure.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramOpsChatID)
	metrics := infrastructure.NewMetrics()

	// Usecases
	authUsecase := usecases.NewAuthUsecase(cfg)
	gate := usecases.NewEntitlementGate(creditRepo, subscriptionRepo, notifier)
	translator := usecases.NewTranslator(cfg.QBEnvironment)
	qbService := usecases.NewQuickBooksService(authUsecase, gate, translator, qbClient, sessionManager, metrics)
	billingUsecase := usecases.NewBillingUsecase(stripeClient, userRepo, subscriptionRepo, notifier, cfg)

	// HTTP surface
	handler := http.NewHandler(authUsecase, qbService, sessionManager, userRepo, creditRepo, subscriptionRepo, cfg.BaseURL)
	billingHandler := http.NewBillingHandler(billingUsecase, sessionManager, cfg.BaseURL)
	authMiddleware := http.NewMiddleware(cfg.JWTSecret)

	r := gin.Default()
	http.SetupRoutes(r, handler, billingHandler, authMiddleware)

	fmt.Println("Listening on", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		fmt.Printf("FAILED to start HTTP Server: %v\n", err)
		os.Exit(1)
	}
}
