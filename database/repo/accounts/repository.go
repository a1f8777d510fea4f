package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"gorm.io/gorm"
)

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

var _ repo.UserRepository = (*Repository)(nil)

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// FindByLoginName 通过登录名获取用户，大小写不敏感
func (r *Repository) FindByLoginName(ctx context.Context, loginName string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("login_name_key = ?", models.LoginNameKey(loginName)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by login name: %w", err)
	}
	return &user, nil
}

// FindByID 通过ID获取用户
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return &user, nil
}

// Insert 创建用户
func (r *Repository) Insert(ctx context.Context, user *models.User) error {
	user.LoginNameKey = models.LoginNameKey(user.LoginName)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if repo.IsDuplicateError(err) {
			return repo.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// DeleteByID 删除用户
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// List 获取所有用户，按创建时间排序
func (r *Repository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Count 用户总数
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
