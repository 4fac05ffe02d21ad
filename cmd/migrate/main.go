package main

import (
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"shop-backend/internal/config"
	"shop-backend/internal/infrastructure/migration"
	"shop-backend/pkg/logger"
)

func main() {
	source := flag.String("source", "file://migrations", "migrations source URL")
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		logger.Fatal("usage: migrate [-source URL] <up|down|version>", errors.New("missing command"))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", err)
	}
	logger.Init(cfg.App.Environment)

	m, err := migration.NewMigrator(cfg.Database.URL(), *source)
	if err != nil {
		logger.Fatal("failed to create migrator", err)
	}
	defer func() { _, _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending migrations", nil)
			return
		}
		if err != nil {
			logger.Error("migration up failed", err)
			os.Exit(1)
		}
		logger.Info("migrations applied", nil)

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to roll back", nil)
			return
		}
		if err != nil {
			logger.Error("migration down failed", err)
			os.Exit(1)
		}
		logger.Info("migration rolled back", nil)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied yet", nil)
			return
		}
		if err != nil {
			logger.Error("failed to read version", err)
			os.Exit(1)
		}
		logger.Info("current migration version", map[string]interface{}{"version": version, "dirty": dirty})

	default:
		logger.Error("unknown command", errors.New(args[0]))
		os.Exit(1)
	}
}
