package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/cyberportal/domain"
	"github.com/you/cyberportal/internal/config"
	"github.com/you/cyberportal/internal/infrastructure/auth"
	"github.com/you/cyberportal/internal/infrastructure/portalapi"
	"github.com/you/cyberportal/internal/infrastructure/storage"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config

	DB          *gorm.DB
	RedisClient *redis.Client

	Storage     domain.StorageProvider
	API         domain.PortalAPI
	RoutePolicy *auth.RoutePolicy
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.initRoutePolicy(); err != nil {
		return nil, err
	}

	c.API = portalapi.NewClient(cfg.PortalAPIBaseURL, cfg.PortalAPITimeout)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.StorageDriver {
	case "redis":
		client, err := storage.Dial(ctx, c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
		if err != nil {
			return err
		}
		c.RedisClient = client
		c.Storage = storage.NewRedisProvider(client, c.Config.VisitorTTL)
	case "sqlite", "postgres":
		db, err := storage.Open(c.Config.StorageDriver, c.Config.StorageDSN)
		if err != nil {
			return fmt.Errorf("failed to open storage database: %w", err)
		}
		provider, err := storage.NewGormProvider(db, c.Config.VisitorTTL)
		if err != nil {
			return err
		}
		c.DB = db
		c.Storage = provider
	case "memory":
		c.Storage = storage.NewMemoryProvider()
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Config.StorageDriver)
	}
	return nil
}

// initRoutePolicy builds the casbin enforcer. Policies persist in the
// storage database when one is open; redis/memory deployments keep
// them in a local sqlite file instead.
func (c *Container) initRoutePolicy() error {
	db := c.DB
	if db == nil {
		var err error
		db, err = storage.Open("sqlite", policyDSN(c.Config))
		if err != nil {
			return fmt.Errorf("failed to open policy database: %w", err)
		}
	}
	rp, err := auth.NewRoutePolicy(db, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.RoutePolicy = rp
	return nil
}

func policyDSN(cfg *config.Config) string {
	if cfg.StorageDSN != "" {
		return cfg.StorageDSN
	}
	return "cyberportal.db"
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
