package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/invoiceflow/backend/internal/application/ingest"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/logger"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		dataPath string
		logLevel string
	)

	flag.StringVar(&dataPath, "file", "", "Path to the extraction JSON file (default: from config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if dataPath == "" {
		dataPath = cfg.Ingest.DataPath
	}

	log.Info("Seed job started", zap.String("file", dataPath))

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		log.Fatal("Failed to read extraction file", zap.Error(err))
	}

	var records []ingest.ExtractionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Fatal("Failed to parse extraction file", zap.Error(err))
	}
	log.Info("Extraction file parsed", zap.Int("records", len(records)))

	// Connect to the database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	normalizer := ingest.NewNormalizer(vendorRepo, customerRepo, invoiceRepo, log)

	// Cancel the batch cleanly on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := normalizer.Run(ctx, records)
	if err != nil {
		log.Fatal("Ingestion aborted", zap.Error(err))
	}

	log.Info("Seed job finished",
		zap.Int("total", result.Total),
		zap.Int("ingested", result.Ingested),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	if result.Failed > 0 {
		os.Exit(1)
	}
}
