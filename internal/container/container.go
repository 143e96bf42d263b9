package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tablette/catalog/internal/cache"
	"tablette/catalog/internal/client"
	"tablette/catalog/internal/config"
	"tablette/catalog/internal/handler"
	"tablette/catalog/internal/repository"
	"tablette/catalog/internal/service"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Repository repository.CatalogRepository
	PageCache  cache.PageCache
	Service    *service.Service
	Router     *gin.Engine

	server  *http.Server
	db      *pgxpool.Pool
	gateway *client.GatewayClient
	redis   *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	ConfigureLogging(cfg.Log)

	container := &Container{
		Config: cfg,
	}

	// Initialize retrieval source
	switch cfg.Source.Kind {
	case config.SourceGateway:
		gateway := client.NewGatewayClient(cfg.Gateway)
		container.gateway = gateway
		container.Repository = gateway
		log.Infof("✅ Using ERP gateway at %s", cfg.Gateway.BaseURL)
	default:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		container.db = db
		container.Repository = repository.NewCatalogRepository(db, repository.Options{
			Schema:         cfg.Database.Schema,
			PriceList:      cfg.Catalog.PriceList,
			Categories:     cfg.Catalog.Categories,
			ExtendedBrands: cfg.Catalog.ExtendedBrands,
		})
		log.Infof("✅ Connected to PostgreSQL %s/%s", cfg.Database.Host, cfg.Database.Name)
	}

	// Page cache is optional
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = container.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Infof("✅ Connected to Redis, caching pages for %s", cfg.Redis.TTL())
		container.redis = rdb
		container.PageCache = cache.NewRedisPageCache(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TTL())
	}

	container.Service = service.NewService(
		container.Repository,
		container.PageCache,
		service.TextFilter{FoldAccents: cfg.Catalog.FoldAccents},
	)

	gin.SetMode(cfg.Server.Mode)
	container.Router = handler.NewRouter(handler.NewCatalogHandler(
		container.Service,
		handler.Projector{ImageURLPattern: cfg.Catalog.ImageURLPattern},
	))

	container.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return container, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 Catalog API listening on %s", c.server.Addr)
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Stopping HTTP server...")

		timeout := time.Duration(c.Config.Server.ShutdownTimeout) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := c.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	var errs []error
	if c.db != nil {
		c.db.Close()
	}
	if c.gateway != nil {
		errs = append(errs, c.gateway.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}

	log.Info("Container shut down successfully")
	return errors.Join(errs...)
}

// ConfigureLogging applies the configured level and format to the global logger.
func ConfigureLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
