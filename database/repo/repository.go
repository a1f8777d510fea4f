// Package repo 定义文档层的仓库契约，gorm 与 mongodb 两种后端都实现这些接口
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/anoixa/photo-share/database/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一键冲突
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository 用户仓库接口
type UserRepository interface {
	FindByLoginName(ctx context.Context, loginName string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Insert 登录名冲突时返回 ErrDuplicate
	Insert(ctx context.Context, user *models.User) error
	// DeleteByID 没有删除任何记录时返回 ErrNotFound
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// PhotoRepository 图片聚合仓库接口
type PhotoRepository interface {
	FindByUser(ctx context.Context, userID string) ([]*models.Photo, error)
	FindByID(ctx context.Context, id string) (*models.Photo, error)
	Insert(ctx context.Context, photo *models.Photo) error
	// DeleteByID 重复删除返回 ErrNotFound
	DeleteByID(ctx context.Context, id string) error
	DeleteManyByUser(ctx context.Context, userID string) (int64, error)
	// PullCommentsByAuthor 从所有图片中移除该作者的评论，返回移除的评论条数
	PullCommentsByAuthor(ctx context.Context, userID string) (int64, error)
	AppendComment(ctx context.Context, photoID string, comment *models.Comment) error
	// RemoveComment 图片或评论不存在时返回 ErrNotFound
	RemoveComment(ctx context.Context, photoID, commentID string) error
	ListAll(ctx context.Context) ([]*models.Photo, error)
	Count(ctx context.Context) (int64, error)
}

// SchemaRepository 数据集元信息仓库接口
type SchemaRepository interface {
	Get(ctx context.Context) (*models.SchemaInfo, error)
	// Ensure 不存在时写入初始记录
	Ensure(ctx context.Context, version string) (*models.SchemaInfo, error)
	Counts(ctx context.Context) (*models.Counts, error)
}

// IsDuplicateError 判断 gorm 返回的错误是否为唯一键冲突
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
