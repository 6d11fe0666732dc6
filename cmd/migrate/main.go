package main

import (
	"fmt"
	"os"

	"github.com/dukapos/backend/internal/infrastructure/config"
	"github.com/dukapos/backend/internal/infrastructure/logger"
	"github.com/dukapos/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Schema sync tool for deployments where the server is not allowed to
// alter the schema itself. Reads the same config as the server.
func main() {
	log, err := logger.New(&logger.Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	log.Info("Running schema migration",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := db.Migrate(); err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}

	log.Info("Schema migration complete")
}
