package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database/mongodb"
)

// NewProvider 根据 db_type 创建文档层提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	log.Println("Initializing database provider...")

	var provider Provider
	switch cfg.DBType {
	case "mongodb", "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mp, err := mongodb.NewProvider(ctx, mongodb.Config{
			URI:      cfg.DBMongoURI,
			Database: cfg.DBName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongodb provider: %w", err)
		}
		provider = mp
	default:
		gp, err := NewGormProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database provider: %w", err)
		}
		provider = gp
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())
	return provider, nil
}
