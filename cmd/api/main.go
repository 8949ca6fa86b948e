package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RobelK1738/Buddys-Brain/internal/api"
	"github.com/RobelK1738/Buddys-Brain/internal/config"
	"github.com/RobelK1738/Buddys-Brain/internal/extract"
	"github.com/RobelK1738/Buddys-Brain/internal/logger"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
	"github.com/RobelK1738/Buddys-Brain/internal/service"
	"github.com/RobelK1738/Buddys-Brain/internal/storage"
)

func main() {
	// CONFIG_PATH overrides the default search locations in deployments.
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "buddysbrain",
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
	logger.SetDefault(log)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	resourceRepo := repository.NewResourceRepository(db)
	qdrantRepo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      cfg.Qdrant.Collection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Qdrant repository")
	}
	defer qdrantRepo.Close()

	ctx := context.Background()
	if err := qdrantRepo.EnsureCollection(ctx); err != nil {
		log.WithError(err).Fatal("Failed to ensure Qdrant collection")
	}

	objectStorage, err := storage.NewS3Storage(&cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		log.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	llmService := service.NewLLMService(&service.LLMConfig{
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
	})

	embeddingService := service.NewEmbeddingService(&service.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
	})

	tokenCounter := service.NewTiktokenCounter(cfg.LLM.Model)
	transcriptClient := service.NewTranscriptClient(nil)
	summarizer := service.NewSummarizer(llmService, tokenCounter, transcriptClient)

	ingestService := service.NewIngestService(
		resourceRepo,
		qdrantRepo,
		extract.New(),
		summarizer,
		embeddingService,
		log,
		&service.IngestConfig{
			Workers: cfg.Ingest.Workers,
		},
	)

	searchService := service.NewSearchService(
		qdrantRepo,
		embeddingService,
		llmService,
		tokenCounter,
		log,
	)

	router := api.SetupRouter(ingestService, searchService, resourceRepo, objectStorage, &cfg.Server)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}
