// Package mongodb 以 MongoDB 文档集合实现文档层，评论直接内嵌在图片文档中
package mongodb

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/photo-share/database/repo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection      = "users"
	photosCollection     = "photos"
	schemaInfoCollection = "schemainfos"
)

// Config MongoDB 连接配置
type Config struct {
	URI      string
	Database string
}

// Provider MongoDB 文档层提供者
type Provider struct {
	client *mongo.Client
	db     *mongo.Database

	users  *UserRepository
	photos *PhotoRepository
	schema *SchemaRepository
}

// NewProvider 连接 MongoDB 并校验连通性
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "photo-share"
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Printf("MongoDB connected, database: %s", cfg.Database)
	return NewProviderFromDatabase(client, client.Database(cfg.Database)), nil
}

// NewProviderFromDatabase 使用已有连接创建提供者
func NewProviderFromDatabase(client *mongo.Client, db *mongo.Database) *Provider {
	return &Provider{
		client: client,
		db:     db,
		users:  NewUserRepository(db.Collection(usersCollection)),
		photos: NewPhotoRepository(db.Collection(photosCollection)),
		schema: NewSchemaRepository(db),
	}
}

func (p *Provider) Users() repo.UserRepository {
	return p.users
}

func (p *Provider) Photos() repo.PhotoRepository {
	return p.photos
}

func (p *Provider) Schema() repo.SchemaRepository {
	return p.schema
}

// Migrate 建立唯一索引与查询索引
func (p *Provider) Migrate(ctx context.Context) error {
	_, err := p.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login_name_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = p.db.Collection(photosCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "file_name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_time", Value: 1}}},
		{Keys: bson.D{{Key: "comments.user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create photos indexes: %w", err)
	}
	return nil
}

// Ping 检查连接
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

// Close 断开连接
func (p *Provider) Close() error {
	return p.client.Disconnect(context.Background())
}

// Name 返回后端名称
func (p *Provider) Name() string {
	return "mongodb"
}
