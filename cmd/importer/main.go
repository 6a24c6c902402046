package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"pos-storefront/internal/config"
	"pos-storefront/internal/db"
	"pos-storefront/internal/importer"
	"pos-storefront/internal/logging"
	"pos-storefront/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to the product CSV (columns id,name,price,category,image)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField("cmd", "importer")

	if err := run(cfg, filePath, logger); err != nil {
		logger.WithError(err).Error("import failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, filePath string, logger *logrus.Entry) error {
	if cfg.DBConnString == "" {
		return errors.New("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, cfg.PlaceholderImage, logger), cfg.PlaceholderImage)

	start := time.Now()
	count, warnings, err := imp.Run(ctx)
	for _, w := range warnings {
		logger.WithError(w).Warn("skipped row")
	}
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"imported": count,
		"skipped":  len(warnings),
		"file":     filePath,
		"took":     time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("import complete")
	return nil
}
