package cascade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/generator"
	"github.com/anoixa/photo-share/utils/validator"
)

// Coordinator 协调跨文档层与文件存储的变更
type Coordinator struct {
	users    repo.UserRepository
	photos   repo.PhotoRepository
	blobs    storage.Provider
	sessions session.Store
	authors  cache.Provider
	maxBytes int64
	now      func() time.Time
}

// Config 协调器依赖
type Config struct {
	Users    repo.UserRepository
	Photos   repo.PhotoRepository
	Blobs    storage.Provider
	Sessions session.Store
	// Authors 作者缓存，可为空
	Authors  cache.Provider
	MaxBytes int64
}

// NewCoordinator 创建协调器
func NewCoordinator(cfg Config) *Coordinator {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Coordinator{
		users:    cfg.Users,
		photos:   cfg.Photos,
		blobs:    cfg.Blobs,
		sessions: cfg.Sessions,
		authors:  cfg.Authors,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Upload 上传的原始文件
type Upload struct {
	FileName string
	Data     []byte
}

// UploadPhoto 校验并保存图片：先写文件再提交记录，提交失败时删除已写入的文件
func (c *Coordinator) UploadPhoto(ctx context.Context, actor *auth.Identity, upload Upload) (*models.Photo, error) {
	if err := auth.Check(actor, auth.OpCreatePhoto, auth.Target{}); err != nil {
		return nil, err
	}

	if len(upload.Data) == 0 {
		return nil, apperr.Validation("No file uploaded")
	}
	if int64(len(upload.Data)) > c.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("File too large, limit is %d MB", c.maxBytes>>20))
	}
	if _, err := validator.InspectImage(upload.Data); err != nil {
		return nil, apperr.Validation("Uploaded file is not a supported image")
	}

	now := c.now()
	photo := &models.Photo{
		ID:       uuid.NewString(),
		DateTime: now,
		UserID:   actor.ID,
		Comments: []models.Comment{},
	}

	// 文件名冲突时换名重试，写入不覆盖已有文件，补偿只会删除本次写入的文件
	for attempt := 1; ; attempt++ {
		photo.FileName = generator.PhotoFileName(upload.FileName, now)
		report := Execute(ctx, c.uploadPlan(photo, upload.Data))
		err := report.Err()
		if err == nil {
			break
		}
		if isNameCollision(err) && attempt < maxNameAttempts {
			log.Printf("[Cascade] File name %s already taken, retrying (attempt %d)", photo.FileName, attempt)
			continue
		}
		log.Printf("[Cascade] Upload by %s failed (blob=%s row=%s): %s", actor.ID, photo.FileName, photo.ID, report)
		return nil, apperr.Dependency("Failed to save photo", err)
	}

	utils.LogIfDevf("[Cascade] Photo %s uploaded by %s as %s", photo.ID, actor.ID, photo.FileName)
	return photo, nil
}

// maxNameAttempts 上传文件名冲突时的最大尝试次数
const maxNameAttempts = 3

func (c *Coordinator) uploadPlan(photo *models.Photo, data []byte) *Plan {
	p := &Plan{Name: "upload_photo"}
	p.Add(Step{
		Name: "write_blob",
		Run: func(ctx context.Context) error {
			return c.blobs.SaveWithContext(ctx, photo.FileName, bytes.NewReader(data))
		},
		Compensate: func(ctx context.Context) error {
			return c.blobs.DeleteWithContext(ctx, photo.FileName)
		},
	})
	p.Add(Step{
		Name: "commit_row",
		Run: func(ctx context.Context) error {
			return c.photos.Insert(ctx, photo)
		},
	})
	return p
}

// isNameCollision 文件已存在，或记录中已有同名文件（其文件已丢失）
func isNameCollision(err error) bool {
	return errors.Is(err, storage.ErrExist) || errors.Is(err, repo.ErrDuplicate)
}

// DeletePhoto 删除图片：先删记录，再尽力删除文件
func (c *Coordinator) DeletePhoto(ctx context.Context, actor *auth.Identity, photoID string) error {
	if actor == nil {
		return apperr.Unauthorized("Unauthorized")
	}

	photo, err := c.photos.FindByID(ctx, photoID)
	if err != nil {
		return photoLookupError(err)
	}
	if err := auth.Check(actor, auth.OpDeletePhoto, auth.Target{PhotoOwnerID: photo.UserID}); err != nil {
		return err
	}

	p := &Plan{Name: "delete_photo"}
	p.Add(Step{
		Name: "delete_photo_row",
		Run: func(ctx context.Context) error {
			return c.photos.DeleteByID(ctx, photo.ID)
		},
	})
	p.Add(c.deleteBlobStep(photo))

	if err := Execute(ctx, p).Err(); err != nil {
		return photoLookupError(err)
	}
	return nil
}

// DeleteUser 删除用户及其全部数据
// 顺序：文件 → 图片记录 → 其他图片上的评论 → 用户记录 → 会话 → 作者缓存
func (c *Coordinator) DeleteUser(ctx context.Context, actor *auth.Identity, userID string) (*Report, error) {
	if err := auth.Check(actor, auth.OpDeleteUser, auth.Target{UserID: userID}); err != nil {
		return nil, err
	}

	if _, err := c.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Dependency("Failed to load user", err)
	}

	photos, err := c.photos.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Dependency("Failed to enumerate photos", err)
	}

	p := &Plan{Name: "delete_user"}
	for _, photo := range photos {
		p.Add(c.deleteBlobStep(photo))
	}
	p.Add(Step{
		Name: "delete_photo_rows",
		Run: func(ctx context.Context) error {
			n, err := c.photos.DeleteManyByUser(ctx, userID)
			if err != nil {
				return err
			}
			utils.LogIfDevf("[Cascade] Deleted %d photo rows of user %s", n, userID)
			return nil
		},
	})
	p.Add(Step{
		Name: "pull_comments",
		Run: func(ctx context.Context) error {
			n, err := c.photos.PullCommentsByAuthor(ctx, userID)
			if err != nil {
				return err
			}
			utils.LogIfDevf("[Cascade] Pulled comments of user %s from %d records", userID, n)
			return nil
		},
	})
	p.Add(Step{
		Name: "delete_user_row",
		Run: func(ctx context.Context) error {
			return c.users.DeleteByID(ctx, userID)
		},
	})
	p.Add(Step{
		Name:       "destroy_sessions",
		BestEffort: true,
		Run: func(ctx context.Context) error {
			if c.sessions == nil {
				return nil
			}
			_, err := c.sessions.DestroyUser(ctx, userID)
			return err
		},
	})
	p.Add(Step{
		Name:       "evict_author_cache",
		BestEffort: true,
		Run: func(ctx context.Context) error {
			if c.authors == nil {
				return nil
			}
			return c.authors.Delete(ctx, cache.Author.BuildID(userID))
		},
	})

	report := Execute(ctx, p)
	if err := report.Err(); err != nil {
		log.Printf("[Cascade] Deletion of user %s stopped: %s", userID, report)
		if errors.Is(err, repo.ErrNotFound) {
			return report, apperr.NotFound("User not found")
		}
		return report, apperr.Dependency("Failed to delete user", err)
	}

	log.Printf("[Cascade] User %s deleted with %d photos", userID, len(photos))
	return report, nil
}

func (c *Coordinator) deleteBlobStep(photo *models.Photo) Step {
	return Step{
		Name:       "delete_blob:" + photo.FileName,
		BestEffort: true,
		Run: func(ctx context.Context) error {
			err := c.blobs.DeleteWithContext(ctx, photo.FileName)
			if errors.Is(err, storage.ErrNotExist) {
				utils.LogIfDevf("[Cascade] Blob %s of photo %s already gone", photo.FileName, photo.ID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("photo %s: %w", photo.ID, err)
			}
			return nil
		},
	}
}

func photoLookupError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound("Photo not found")
	}
	return apperr.Dependency("Failed to access photo", err)
}
