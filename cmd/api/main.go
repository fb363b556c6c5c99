package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/payment-tracker/internal/api/handlers"
	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/pipeline"
)

func main() {
	port := flag.String("port", os.Getenv("PORT"), "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port == "" {
		*port = cfg.Port
	}

	runner := pipeline.NewRunner(cfg, log)
	h := handlers.New(runner, cfg, log)

	mux := http.NewServeMux()
	h.Register(mux)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + *port,
		Handler: handler,
		// A full run holds the request open while the mailbox is scanned
		// and the store is written, so the write timeout is generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("backend", string(cfg.StoreBackend)).Msg("Starting payment tracker server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
