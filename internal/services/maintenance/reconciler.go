// Package maintenance 修复级联删除允许留下的不一致：悬空图片记录、孤儿文件、失效作者的图片和评论
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils/generator"
)

// Options 单次修复的范围
type Options struct {
	DryRun      bool
	DBOnly      bool
	StorageOnly bool
}

// Stats 修复统计
type Stats struct {
	DanglingRows   int // 文件缺失的图片记录
	OrphanBlobs    int // 没有记录的文件
	StaleAuthors   int // 已不存在的评论作者
	OrphanOwners   int // 所有者已不存在的图片
	DeletedRows    int
	DeletedBlobs   int
	PulledComments int64
	Errors         []string
}

// Failed 是否有错误
func (s *Stats) Failed() bool {
	return len(s.Errors) > 0
}

func (s *Stats) addError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.Errors = append(s.Errors, msg)
	log.Printf("[Reconciler] %s", msg)
}

// Reconciler 一致性修复器
type Reconciler struct {
	users  repo.UserRepository
	photos repo.PhotoRepository
	blobs  storage.Provider
	grace  time.Duration
	now    func() time.Time
}

// NewReconciler 创建修复器，grace 内新写入的文件不视为孤儿
func NewReconciler(users repo.UserRepository, photos repo.PhotoRepository, blobs storage.Provider, grace time.Duration) *Reconciler {
	return &Reconciler{
		users:  users,
		photos: photos,
		blobs:  blobs,
		grace:  grace,
		now:    time.Now,
	}
}

// Run 执行一次修复
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Stats, error) {
	photos, err := r.photos.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	stats := &Stats{}
	if !opts.StorageOnly {
		photos = r.cleanDanglingRows(ctx, photos, stats, opts.DryRun)
		photos = r.cleanOrphanOwners(ctx, photos, stats, opts.DryRun)
		r.cleanStaleComments(ctx, photos, stats, opts.DryRun)
	}
	if !opts.DBOnly {
		r.cleanOrphanBlobs(ctx, photos, stats, opts.DryRun)
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// cleanDanglingRows 删除文件已不存在的图片记录，返回剩余的图片
func (r *Reconciler) cleanDanglingRows(ctx context.Context, photos []*models.Photo, stats *Stats, dryRun bool) []*models.Photo {
	kept := photos[:0:0]
	for _, p := range photos {
		if ctx.Err() != nil {
			return kept
		}
		exists, err := r.blobs.Exists(ctx, p.FileName)
		if err != nil {
			stats.addError("failed to check blob %s: %v", p.FileName, err)
			kept = append(kept, p)
			continue
		}
		if exists {
			kept = append(kept, p)
			continue
		}

		stats.DanglingRows++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete dangling photo row: ID=%s, FileName=%s", p.ID, p.FileName)
			kept = append(kept, p)
			continue
		}
		if err := r.photos.DeleteByID(ctx, p.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			stats.addError("failed to delete photo row %s: %v", p.ID, err)
			kept = append(kept, p)
			continue
		}
		stats.DeletedRows++
		log.Printf("[Reconciler] Deleted dangling photo row %s (%s)", p.ID, p.FileName)
	}
	return kept
}

// cleanOrphanOwners 删除所有者已不存在的图片及其文件，返回剩余的图片
func (r *Reconciler) cleanOrphanOwners(ctx context.Context, photos []*models.Photo, stats *Stats, dryRun bool) []*models.Photo {
	missing := make(map[string]bool)
	kept := photos[:0:0]
	for _, p := range photos {
		if ctx.Err() != nil {
			return kept
		}
		gone, checked := missing[p.UserID]
		if !checked {
			_, err := r.users.FindByID(ctx, p.UserID)
			switch {
			case err == nil:
			case errors.Is(err, repo.ErrNotFound):
				gone = true
			default:
				stats.addError("failed to look up photo owner %s: %v", p.UserID, err)
				kept = append(kept, p)
				continue
			}
			missing[p.UserID] = gone
		}
		if !gone {
			kept = append(kept, p)
			continue
		}

		stats.OrphanOwners++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete photo of missing owner: ID=%s, Owner=%s", p.ID, p.UserID)
			kept = append(kept, p)
			continue
		}
		if err := r.photos.DeleteByID(ctx, p.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			stats.addError("failed to delete photo row %s: %v", p.ID, err)
			kept = append(kept, p)
			continue
		}
		stats.DeletedRows++
		// 文件删除失败时留给孤儿文件清理
		if err := r.blobs.DeleteWithContext(ctx, p.FileName); err != nil && !errors.Is(err, storage.ErrNotExist) {
			log.Printf("[Reconciler] Failed to delete blob %s of removed photo %s: %v", p.FileName, p.ID, err)
		} else if err == nil {
			stats.DeletedBlobs++
		}
		log.Printf("[Reconciler] Deleted photo %s of missing owner %s", p.ID, p.UserID)
	}
	return kept
}

// cleanStaleComments 移除作者已被删除的评论
func (r *Reconciler) cleanStaleComments(ctx context.Context, photos []*models.Photo, stats *Stats, dryRun bool) {
	seen := make(map[string]bool)
	for _, p := range photos {
		for _, c := range p.Comments {
			if seen[c.UserID] {
				continue
			}
			seen[c.UserID] = true
			if ctx.Err() != nil {
				return
			}

			_, err := r.users.FindByID(ctx, c.UserID)
			if err == nil {
				continue
			}
			if !errors.Is(err, repo.ErrNotFound) {
				stats.addError("failed to look up comment author %s: %v", c.UserID, err)
				continue
			}

			stats.StaleAuthors++
			if dryRun {
				log.Printf("[DRY-RUN] Would pull comments of missing author %s", c.UserID)
				continue
			}
			n, err := r.photos.PullCommentsByAuthor(ctx, c.UserID)
			if err != nil {
				stats.addError("failed to pull comments of %s: %v", c.UserID, err)
				continue
			}
			stats.PulledComments += n
		}
	}
}

// cleanOrphanBlobs 删除没有对应记录且超过宽限期的文件
func (r *Reconciler) cleanOrphanBlobs(ctx context.Context, photos []*models.Photo, stats *Stats, dryRun bool) {
	lister, ok := r.blobs.(storage.Lister)
	if !ok {
		log.Printf("[Reconciler] Storage '%s' does not support listing, skipping orphan blobs", r.blobs.Name())
		return
	}

	blobs, err := lister.List(ctx)
	if err != nil {
		stats.addError("failed to list storage: %v", err)
		return
	}

	known := make(map[string]struct{}, len(photos))
	for _, p := range photos {
		known[p.FileName] = struct{}{}
	}

	cutoff := r.now().Add(-r.grace)
	for _, b := range blobs {
		if _, ok := known[b.Name]; ok {
			continue
		}
		// 共享 bucket 中的其他对象
		if !generator.IsPhotoFileName(b.Name) {
			continue
		}
		// 可能是尚未提交记录的上传
		if b.ModTime.After(cutoff) {
			continue
		}

		stats.OrphanBlobs++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete orphan blob: %s", b.Name)
			continue
		}
		if err := r.blobs.DeleteWithContext(ctx, b.Name); err != nil && !errors.Is(err, storage.ErrNotExist) {
			stats.addError("failed to delete orphan blob %s: %v", b.Name, err)
			continue
		}
		stats.DeletedBlobs++
		log.Printf("[Reconciler] Deleted orphan blob %s", b.Name)
	}
}
