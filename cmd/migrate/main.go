package main

import (
	"flag"
	"log"

	"classquiz/internal/config"
	"classquiz/internal/database"
	"classquiz/internal/logger"

	"go.uber.org/zap"
)

func main() {
	migrationsDir := flag.String("dir", "database/migrations", "directory holding .up.sql migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Logger)
	l := logger.Get()
	defer l.Sync()

	db, err := database.NewMigrateOracleDB(cfg.GetMigrateDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, *migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	l.Info("Migrations applied", zap.String("dir", *migrationsDir))
}
