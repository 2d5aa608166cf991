package container

import (
	"context"
	"fmt"
	"time"

	"photovault-backend/internal/config"
	mediaRepo "photovault-backend/internal/domains/media/repository"
	personHandler "photovault-backend/internal/domains/person/handler"
	personRepo "photovault-backend/internal/domains/person/repository"
	personService "photovault-backend/internal/domains/person/service"
	infraCache "photovault-backend/internal/infrastructure/cache"
	"photovault-backend/internal/infrastructure/database"
	"photovault-backend/internal/infrastructure/queue"
	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/pkg/cache"
	"photovault-backend/pkg/jwt"
	"photovault-backend/pkg/logger"
)

// Container is the root of the dependency graph. Both binaries build one:
// the API wires handlers on top of it, the worker wires job handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	Blob       storage.Blob
	Dispatcher queue.Dispatcher
	JWTManager *jwt.Manager

	PersonRepo personRepo.PersonRepository
	AssetRepo  mediaRepo.AssetRepository
	SearchRepo mediaRepo.SearchRepository

	PersonService    personService.PersonService
	ThumbnailService *personService.ThumbnailService

	PersonHandler *personHandler.PersonHandler
}

// NewContainer initializes the dependency graph layer by layer: config,
// infrastructure, repositories, services, handlers. Order matters.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.DB = db
	logger.Info("Database connected", nil)

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		// Cache outages degrade reads to the store; not fatal.
		logger.Warn("Redis connection failed, caching degraded", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Cache = redisCache

	blob, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Blob = blob

	c.Dispatcher = queue.NewAsynqDispatcher(cfg.Redis)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.PersonRepo = personRepo.NewPostgresPersonRepository(pool)
	c.AssetRepo = mediaRepo.NewPostgresAssetRepository(pool)
	c.SearchRepo = mediaRepo.NewPostgresSearchRepository(pool)
}

func (c *Container) initServices() {
	c.PersonService = personService.NewPersonService(
		c.PersonRepo,
		c.Blob,
		c.Dispatcher,
		c.Cache,
		c.Config.People,
	)
	c.ThumbnailService = personService.NewThumbnailService(
		c.PersonRepo,
		c.AssetRepo,
		c.Blob,
		storage.NewImageProcessor(c.Config.People.ThumbnailSize),
	)
}

func (c *Container) initHandlers() {
	c.PersonHandler = personHandler.NewPersonHandler(c.PersonService)
}

// Cleanup releases external connections. Called from graceful shutdown.
func (c *Container) Cleanup() {
	if c.Dispatcher != nil {
		if d, ok := c.Dispatcher.(*queue.AsynqDispatcher); ok {
			if err := d.Close(); err != nil {
				logger.Error("Failed to close queue client", err)
			}
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("Failed to close Redis", err)
			}
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	logger.Info("Container resources released", nil)
}
