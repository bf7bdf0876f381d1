package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"fintrack/internal/api"
	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/mail"
	"fintrack/internal/monitoring"
	"fintrack/internal/services"
)

func main() {
	logger.Init()

	// Load configuration. A missing JWT secret fails here, before anything
	// can serve a request.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the token issuer with the injected signing secret
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}

	mailer := mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom)
	hasher := services.NewPasswordHasher()

	// Set up services
	userService := services.NewUserService(db)
	authService := services.NewAuthService(userService, issuer, hasher, mailer, cfg.ResetLinkBase)
	transactionService := services.NewTransactionService(db)
	settingsService := services.NewSettingsService(db)

	// Set up and run the background reset-token reaper
	reaper, err := monitoring.NewResetReaper(userService, cfg.ResetReaperCron)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid reset reaper schedule")
	}
	go reaper.Run()

	// Set up router
	router := api.NewRouter(issuer, authService, transactionService, settingsService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reaper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
