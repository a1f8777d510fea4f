package database

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/database/repo/accounts"
	"github.com/anoixa/photo-share/database/repo/photos"
	"github.com/anoixa/photo-share/database/repo/schema"
	"gorm.io/gorm"
)

// GormProvider GORM 数据库提供者实现
type GormProvider struct {
	db     *gorm.DB
	dbType string

	users  *accounts.Repository
	photos *photos.Repository
	schema *schema.Repository
}

var _ Provider = (*GormProvider)(nil)

// NewGormProvider 根据配置创建 GORM 数据库提供者
func NewGormProvider(cfg *config.Config) (*GormProvider, error) {
	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}
	dbType := cfg.DBType
	if dbType == "" {
		dbType = "sqlite"
	}
	return NewGormProviderFromDB(db, dbType), nil
}

// NewGormProviderFromDB 使用已有连接创建提供者
func NewGormProviderFromDB(db *gorm.DB, dbType string) *GormProvider {
	return &GormProvider{
		db:     db,
		dbType: dbType,
		users:  accounts.NewRepository(db),
		photos: photos.NewRepository(db),
		schema: schema.NewRepository(db),
	}
}

// DB 返回底层 *gorm.DB 实例
func (p *GormProvider) DB() *gorm.DB {
	return p.db
}

func (p *GormProvider) Users() repo.UserRepository {
	return p.users
}

func (p *GormProvider) Photos() repo.PhotoRepository {
	return p.photos
}

func (p *GormProvider) Schema() repo.SchemaRepository {
	return p.schema
}

// Migrate 自动迁移数据库结构
func (p *GormProvider) Migrate(ctx context.Context) error {
	if err := AutoMigrate(p.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

// Ping 检查数据库连接
func (p *GormProvider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func (p *GormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Name 返回数据库名称
func (p *GormProvider) Name() string {
	return p.dbType
}
