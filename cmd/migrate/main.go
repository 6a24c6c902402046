package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"pos-storefront/internal/config"
	"pos-storefront/internal/db"
	"pos-storefront/internal/logging"
	"pos-storefront/internal/migrate"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField("cmd", "migrate")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("migrate failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logrus.Entry) error {
	if cfg.DBConnString == "" {
		return errors.New("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logger.WithField("version", version).Info("migrations applied")
	return nil
}
