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

	"novella-shop/internal/client"
	"novella-shop/internal/config"
	"novella-shop/internal/repository"
	"novella-shop/internal/server"
	"novella-shop/internal/service"
	"novella-shop/internal/session"
	"novella-shop/internal/worker"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	eurToRubRate, err := decimal.NewFromString(cfg.Currency.EURToRUBRate)
	if err != nil {
		fmt.Printf("Invalid CURRENCY_EUR_TO_RUB_RATE: %v\n", err)
		os.Exit(1)
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)
	redisClient := client.InitRedisClient(cfg.RedisURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	yookassaClient := client.NewYookassaClient(&cfg.Yookassa)
	mailClient := client.NewMailClient(&cfg.SMTP)

	catalogRepo := repository.NewCatalogRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	emailJobRepo := repository.NewEmailJobRepository(db)

	if err := catalogRepo.Seed(context.Background()); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	store := session.NewRedisStore(redisClient, cfg.Session.CartTTL)

	pricingService := service.NewPricingService(catalogRepo)
	cartService := service.NewCartService(store, catalogRepo, pricingService)
	promoService := service.NewPromoService(store, promoRepo)
	paymentService := service.NewPaymentService(
		orderRepo,
		webhookEventRepo,
		stripeClient,
		yookassaClient,
		store,
		cfg.BaseURL,
		eurToRubRate,
		cfg.Yookassa.VATCode,
	)
	checkoutService := service.NewCheckoutService(store, cartService, promoService, orderRepo, paymentService)
	userService := service.NewUserService(userRepo, emailJobRepo, cfg.JWT.Secret, cfg.BaseURL)

	mailerCtx, mailerCancel := context.WithCancel(context.Background())
	mailer := worker.NewMailer(emailJobRepo, mailClient)
	go mailer.Run(mailerCtx)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cartService, promoService, checkoutService, paymentService, userService, catalogRepo)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	mailerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
