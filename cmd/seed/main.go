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
	"pos-storefront/internal/repository/product"
	"pos-storefront/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField("cmd", "seed")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("seed failed")
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

	n, err := seed.Apply(ctx, product.NewPostgres(pool, cfg.PlaceholderImage, logger), cfg.PlaceholderImage)
	if err != nil {
		return fmt.Errorf("seed apply: %w", err)
	}

	logger.WithField("products", n).Info("seed applied")
	return nil
}
