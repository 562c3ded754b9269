package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/router"
	"github.com/anonto42/nano-midea/feedview/pkg/config"
	"github.com/anonto42/nano-midea/feedview/pkg/firebase"
	"github.com/anonto42/nano-midea/feedview/pkg/telemetry"
	"github.com/anonto42/nano-midea/feedview/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	shutdown, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Firebase login is optional
	var firebaseAuthClient *auth.Client
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Println("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled.")
	case err != nil:
		log.Fatalf("Failed to initialize Firebase: %v", err)
	default:
		firebaseAuthClient = firebaseApp.AuthClient
	}

	e := echo.New()
	e.Validator = validators.NewValidator(cfg.DescriptionMaxLength)

	config.SetupMiddleware(e, cfg.ServiceName)

	closeRoutes := router.SetupRoutes(e, cfg, db, firebaseAuthClient)
	defer closeRoutes()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server stopped: %v", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
	log.Println("Shutting down...")

	shCtx, shCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shCancel()
	if err := e.Shutdown(shCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
}
