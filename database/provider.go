package database

import (
	"context"

	"github.com/anoixa/photo-share/database/repo"
)

// Provider 文档层提供者接口 - 依赖倒置的核心抽象
// 关系型（gorm）与文档型（mongodb）后端都实现此接口
type Provider interface {
	// Users 用户仓库
	Users() repo.UserRepository

	// Photos 图片聚合仓库
	Photos() repo.PhotoRepository

	// Schema 元信息仓库
	Schema() repo.SchemaRepository

	// Migrate 建表或建立索引
	Migrate(ctx context.Context) error

	// Ping 检查连接
	Ping(ctx context.Context) error

	// Close 关闭连接
	Close() error

	// Name 返回后端名称
	Name() string
}
