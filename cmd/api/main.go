package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/config"
	"pos-storefront/internal/db"
	"pos-storefront/internal/httpserver"
	"pos-storefront/internal/logging"
	"pos-storefront/internal/metrics"
	"pos-storefront/internal/ratelimit"
	productrepo "pos-storefront/internal/repository/product"
	cartsvc "pos-storefront/internal/service/cart"
	productsvc "pos-storefront/internal/service/product"
	"pos-storefront/internal/session"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	logger.WithField("catalog_source", cfg.CatalogSource).Info("starting server")
	defer logger.Info("shutdown complete")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var pool *pgxpool.Pool
	if cfg.DBConnString != "" {
		var err error
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return fmt.Errorf("connect to db: %w", err)
		}
		defer pool.Close()
	}

	rdb := connectRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	repo, err := catalogRepo(cfg, pool, rdb, logger)
	if err != nil {
		return err
	}
	catalogService := productsvc.New(repo, logger, m, cfg.CatalogTimeout)
	catalogService.Load(ctx)
	go catalogService.Run(ctx, cfg.CatalogRefreshInterval)

	store := session.New(cfg.SessionLifetime)
	go sweepSessions(ctx, store, m, logger)

	cartService := cartsvc.New(store, catalogService, logger, m)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Name = "pos_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	var limiter *ratelimit.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimitBurst, cfg.RateLimitRPS, 10*time.Minute)
		go limiter.Run(ctx)
	}

	deps := httpserver.Deps{
		CatalogSvc:     catalogService,
		CartSvc:        cartService,
		Sessions:       sessionManager,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Images:         httpserver.NewImageProxy(&http.Client{Timeout: cfg.CatalogTimeout}, cfg.CatalogImageDir, cfg.PlaceholderImage, logger),
		Currency:       cfg.Currency,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	var pinger httpserver.Pinger
	if pool != nil {
		pinger = pool
	}
	srv, err := httpserver.New(cfg.HTTPAddr, logger, pinger, deps)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func catalogRepo(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, logger *logrus.Logger) (productrepo.Repository, error) {
	var repo productrepo.Repository
	switch cfg.CatalogSource {
	case config.SourceFile:
		repo = productrepo.NewFile(cfg.CatalogFile, cfg.PlaceholderImage)
	case config.SourceRemote:
		client := &http.Client{Timeout: cfg.CatalogTimeout}
		repo = productrepo.NewRemote(cfg.CatalogURL, client, cfg.PlaceholderImage, productrepo.DefaultBreakerSettings(), logger)
	case config.SourcePostgres:
		if pool == nil {
			return nil, errors.New("postgres catalog requires DB_DSN")
		}
		repo = productrepo.NewPostgres(pool, cfg.PlaceholderImage, logger)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
	if rdb != nil {
		repo = productrepo.NewCached(repo, rdb, cfg.CatalogCacheTTL, logger)
	}
	return repo, nil
}

// connectRedis returns nil when redis is not configured or unreachable;
// the catalog then loads straight from its source.
func connectRedis(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable, catalog cache disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func sweepSessions(ctx context.Context, store *session.Store, m *metrics.Metrics, logger logrus.FieldLogger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.WithField("removed", n).Debug("expired sessions swept")
			}
			m.Sessions(store.Len())
		}
	}
}
