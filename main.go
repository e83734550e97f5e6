package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"opolo-api/config"
	"opolo-api/database"
	"opolo-api/gateway"
	"opolo-api/handlers"
	"opolo-api/middleware"
	"opolo-api/service"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("mongo disconnect: %v", err)
		}
	}()

	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	if err := database.EnsureIndexes(ctx, coll); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	store := database.NewRegistrationStore(coll)
	centiiv := gateway.NewClient(cfg.CentiivBaseURL, cfg.CentiivAPIKey, cfg.GatewayTimeout)
	registrations := service.NewRegistrationService(store, centiiv, service.Options{
		CallbackURL:  cfg.PaymentCallbackURL,
		WebhookURL:   cfg.PaymentWebhookURL,
		StoreTimeout: cfg.StoreTimeout,
	})

	router := gin.Default()
	router.Use(middleware.RequestID(), middleware.CORS(cfg.AllowedOrigin))

	router.GET("/health", handlers.HealthHandler(store))
	handlers.NewRegistrationHandler(registrations, cfg.GatewayTimeout+cfg.StoreTimeout).Register(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		fmt.Printf("🚀 Server running in %s mode on http://localhost:%s\n", cfg.AppEnv, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
