package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobdesk/internal/api/handlers"
	"jobdesk/internal/api/routes"
	"jobdesk/internal/api/views"
	"jobdesk/internal/archive"
	"jobdesk/internal/auth"
	"jobdesk/internal/config"
	"jobdesk/internal/documents"
	"jobdesk/internal/graph"
	"jobdesk/internal/llm"
	"jobdesk/internal/logging"
	"jobdesk/internal/posting"
	"jobdesk/internal/session"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()
	logger.Info("Starting jobdesk", map[string]interface{}{"version": handlers.Version})

	if cfg.Auth.ClientID == "" {
		logger.Fatal("auth.client_id (AZURE_CLIENT_ID) is required", nil)
	}

	identity, err := auth.NewMSALIdentity(cfg.Auth.ClientID, cfg.Auth.Authority, cfg.Auth.Scopes)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create identity client")
	}
	authManager := auth.NewManager(auth.NewStore(cfg.Auth.CredentialFile), identity, cfg.StaleAfter(),
		auth.WithLogger(logger.WithField("component", "auth")))

	// Optional PDF archive
	var archiver documents.Archiver
	var archiveHealth handlers.HealthChecker
	if cfg.Archive.Enabled {
		spaces, err := archive.NewSpacesArchiver(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to configure archive bucket")
		}
		archiver, archiveHealth = spaces, spaces
	}

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg, logger.WithField("component", "llm"))
	if err := llmManager.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start LLM manager")
	}

	sessions, err := session.NewStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create session store")
	}
	defer sessions.Close()

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load page templates")
	}

	deps := &handlers.Deps{
		Config:    cfg,
		Auth:      authManager,
		Graph:     graph.NewClient(cfg, logger.WithField("component", "graph")),
		Generator: documents.NewGenerator(cfg, archiver, logger.WithField("component", "documents")),
		LLM:       llmManager,
		Posting:   posting.NewFetcher(cfg, logger),
		Sessions:  sessions,
		Archive:   archiveHealth,
		Logger:    logger,
	}

	e := routes.NewServer(deps, renderer)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down server")
		}
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("address", address).Info("Server starting")

	if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Server failed to start")
	}
	logger.Info("Server shutdown complete", nil)
}
