package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository 数据集元信息仓库
type Repository struct {
	db *gorm.DB
}

var _ repo.SchemaRepository = (*Repository)(nil)

// NewRepository 创建新的元信息仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get 读取元信息记录
func (r *Repository) Get(ctx context.Context) (*models.SchemaInfo, error) {
	var info models.SchemaInfo
	err := r.db.WithContext(ctx).Order("load_date_time asc").First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read schema info: %w", err)
	}
	return &info, nil
}

// Ensure 不存在时写入初始记录
func (r *Repository) Ensure(ctx context.Context, version string) (*models.SchemaInfo, error) {
	info, err := r.Get(ctx)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	info = &models.SchemaInfo{
		ID:           uuid.NewString(),
		Version:      version,
		LoadDateTime: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return nil, fmt.Errorf("failed to create schema info: %w", err)
	}
	return info, nil
}

// Counts 统计各集合记录数
func (r *Repository) Counts(ctx context.Context) (*models.Counts, error) {
	counts := &models.Counts{}
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&counts.User).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&models.Photo{}).Count(&counts.Photo).Error; err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if err := db.Model(&models.SchemaInfo{}).Count(&counts.SchemaInfo).Error; err != nil {
		return nil, fmt.Errorf("failed to count schema info: %w", err)
	}
	return counts, nil
}
