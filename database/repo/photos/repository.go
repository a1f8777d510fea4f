package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"gorm.io/gorm"
)

// Repository 图片聚合仓库，评论保存在子表中并按 seq 保序
type Repository struct {
	db *gorm.DB
}

var _ repo.PhotoRepository = (*Repository)(nil)

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// withComments 预加载按插入顺序排列的评论
func withComments(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq asc, date_time asc, id asc")
	})
}

// FindByUser 获取用户的所有图片
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := withComments(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("date_time asc, id asc").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find photos of user %s: %w", userID, err)
	}
	return photos, nil
}

// FindByID 通过ID获取图片
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	err := withComments(r.db.WithContext(ctx)).Where("id = ?", id).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find photo %s: %w", id, err)
	}
	return &photo, nil
}

// Insert 保存图片记录以及其中已有的评论
func (r *Repository) Insert(ctx context.Context, photo *models.Photo) error {
	for i := range photo.Comments {
		photo.Comments[i].PhotoID = photo.ID
		photo.Comments[i].Seq = int64(i + 1)
	}
	// 图片与内嵌评论在同一事务中写入
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(photo).Error
	})
	if err != nil {
		if repo.IsDuplicateError(err) {
			return repo.ErrDuplicate
		}
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

// DeleteByID 删除图片及其评论
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of photo %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Photo{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete photo %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// DeleteManyByUser 删除用户的所有图片，返回删除数量
func (r *Repository) DeleteManyByUser(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Photo{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("photo_id IN (?)", owned).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments on photos of user %s: %w", userID, err)
		}
		result := tx.Where("user_id = ?", userID).Delete(&models.Photo{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete photos of user %s: %w", userID, result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// PullCommentsByAuthor 从所有图片中移除该作者的评论
func (r *Repository) PullCommentsByAuthor(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Comment{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to pull comments by author %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// AppendComment 在评论序列末尾追加
func (r *Repository) AppendComment(ctx context.Context, photoID string, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePhoto(tx, photoID); err != nil {
			return err
		}

		var maxSeq int64
		if err := tx.Model(&models.Comment{}).
			Where("photo_id = ?", photoID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("failed to read comment sequence of photo %s: %w", photoID, err)
		}

		comment.PhotoID = photoID
		comment.Seq = maxSeq + 1
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to append comment to photo %s: %w", photoID, err)
		}
		return nil
	})
}

// RemoveComment 移除指定评论，其余评论保持原有顺序
func (r *Repository) RemoveComment(ctx context.Context, photoID, commentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePhoto(tx, photoID); err != nil {
			return err
		}
		result := tx.Where("id = ? AND photo_id = ?", commentID, photoID).Delete(&models.Comment{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove comment %s: %w", commentID, result.Error)
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// ListAll 获取所有图片
func (r *Repository) ListAll(ctx context.Context) ([]*models.Photo, error) {
	var photos []*models.Photo
	if err := withComments(r.db.WithContext(ctx)).Order("date_time asc, id asc").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// Count 图片总数
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Photo{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

func ensurePhoto(tx *gorm.DB, photoID string) error {
	var count int64
	if err := tx.Model(&models.Photo{}).Where("id = ?", photoID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check photo %s: %w", photoID, err)
	}
	if count == 0 {
		return repo.ErrNotFound
	}
	return nil
}
