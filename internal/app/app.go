package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/photo-share/api/core"
	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/internal/services/accounts"
	"github.com/anoixa/photo-share/internal/services/cascade"
	"github.com/anoixa/photo-share/internal/services/maintenance"
	"github.com/anoixa/photo-share/internal/services/photos"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config *config.Config

	database database.Provider
	storage  *storage.Factory
	cache    cache.Provider
	sessions session.Store
	codec    *session.Codec

	Accounts   *accounts.Service
	Photos     *photos.Service
	Cascade    *cascade.Coordinator
	Reconciler *maintenance.Reconciler
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化数据、存储、缓存与会话，再组装服务
func (c *Container) Init(ctx context.Context) error {
	utils.LogIfDev("Initializing DI container...")

	if err := c.InitDatabase(ctx); err != nil {
		return err
	}
	if err := c.initStorage(); err != nil {
		return err
	}
	if err := c.InitServices(); err != nil {
		return err
	}

	utils.LogIfDev("DI container initialized successfully")
	return nil
}

// InitDatabase 连接数据库、迁移并写入元信息
func (c *Container) InitDatabase(ctx context.Context) error {
	provider, err := database.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.database = provider

	log.Printf("Initializing database, database type: %s", provider.Name())
	if err := provider.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if _, err := provider.Schema().Ensure(ctx, config.Version); err != nil {
		return fmt.Errorf("failed to bootstrap schema info: %w", err)
	}
	log.Println("Database initialized successfully")
	return nil
}

func (c *Container) initStorage() error {
	factory, err := storage.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storage = factory
	return nil
}

// InitServices 组装缓存、会话与业务服务
func (c *Container) InitServices() error {
	cacheProvider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cache = cacheProvider

	sessions, err := session.NewStore(c.config, cacheProvider)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	c.sessions = sessions

	codec, err := session.NewCodec(c.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize session codec: %w", err)
	}
	c.codec = codec

	users := c.database.Users()
	photoRepo := c.database.Photos()
	blobs := c.storage.GetDefault()

	c.Accounts = accounts.NewService(users, sessions)
	c.Photos = photos.NewService(users, photoRepo, photos.NewAuthorResolver(users, cacheProvider, c.config.CacheAuthorTTL))
	c.Cascade = cascade.NewCoordinator(cascade.Config{
		Users:    users,
		Photos:   photoRepo,
		Blobs:    blobs,
		Sessions: sessions,
		Authors:  cacheProvider,
		MaxBytes: c.config.UploadMaxBytes(),
	})
	c.Reconciler = maintenance.NewReconciler(users, photoRepo, blobs, c.config.ReconcileGrace)

	utils.LogIfDev("Services initialized")
	return nil
}

// ServerDependencies HTTP 层所需依赖
func (c *Container) ServerDependencies() *core.ServerDependencies {
	return &core.ServerDependencies{
		Config:   c.config,
		Database: c.database,
		Storage:  c.storage.GetDefault(),
		Cache:    c.cache,
		Sessions: c.sessions,
		Codec:    c.codec,
		Accounts: c.Accounts,
		Photos:   c.Photos,
		Cascade:  c.Cascade,
	}
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	return c.database
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storage
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	var errs []error
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.database != nil {
		if err := c.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	utils.LogIfDev("DI container closed")
	return errors.Join(errs...)
}
