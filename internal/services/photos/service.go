package photos

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
)

// Service 图片读取与评论服务
type Service struct {
	users   repo.UserRepository
	photos  repo.PhotoRepository
	authors *AuthorResolver
	now     func() time.Time
}

// NewService 创建图片服务
func NewService(users repo.UserRepository, photos repo.PhotoRepository, authors *AuthorResolver) *Service {
	if authors == nil {
		authors = NewAuthorResolver(users, nil, 0)
	}
	return &Service{
		users:   users,
		photos:  photos,
		authors: authors,
		now:     time.Now,
	}
}

// ListPhotosOfUser 按时间顺序返回用户的图片，每条评论附带作者信息
func (s *Service) ListPhotosOfUser(ctx context.Context, actor *auth.Identity, userID string) ([]PhotoView, error) {
	if err := auth.Check(actor, auth.OpReadPhotos, auth.Target{UserID: userID}); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Dependency("Failed to load user", err)
	}

	photos, err := s.photos.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Dependency("Failed to load photos", err)
	}
	slices.SortStableFunc(photos, func(a, b *models.Photo) int {
		return a.DateTime.Compare(b.DateTime)
	})

	authors, err := s.authors.ResolveAll(ctx, commentAuthors(photos))
	if err != nil {
		return nil, apperr.Dependency("Failed to resolve comment authors", err)
	}

	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		view := PhotoView{
			ID:       p.ID,
			FileName: p.FileName,
			DateTime: p.DateTime,
			UserID:   p.UserID,
			Comments: make([]CommentView, 0, len(p.Comments)),
		}
		for _, c := range p.Comments {
			author, ok := authors[c.UserID]
			if !ok {
				author = unknownAuthor(c.UserID)
			}
			view.Comments = append(view.Comments, CommentView{
				ID:       c.ID,
				Comment:  c.Comment,
				DateTime: c.DateTime,
				User:     author,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

func commentAuthors(photos []*models.Photo) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range photos {
		for _, c := range p.Comments {
			if _, ok := seen[c.UserID]; ok {
				continue
			}
			seen[c.UserID] = struct{}{}
			ids = append(ids, c.UserID)
		}
	}
	return ids
}

// AddComment 追加评论，作者固定为当前用户
func (s *Service) AddComment(ctx context.Context, actor *auth.Identity, photoID, text string) (*CommentView, error) {
	if err := auth.Check(actor, auth.OpCreateComment, auth.Target{}); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Comment text is required")
	}

	comment := &models.Comment{
		ID:       uuid.NewString(),
		Comment:  text,
		DateTime: s.now(),
		UserID:   actor.ID,
	}
	if err := s.photos.AppendComment(ctx, photoID, comment); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("Photo not found")
		}
		return nil, apperr.Dependency("Failed to add comment", err)
	}

	return &CommentView{
		ID:       comment.ID,
		Comment:  comment.Comment,
		DateTime: comment.DateTime,
		User:     Author{ID: actor.ID, FirstName: actor.FirstName, LastName: actor.LastName},
	}, nil
}

// DeleteComment 删除评论，评论作者或图片所有者可以删除
func (s *Service) DeleteComment(ctx context.Context, actor *auth.Identity, photoID, commentID string) error {
	if actor == nil {
		return apperr.Unauthorized("Unauthorized")
	}

	photo, err := s.photos.FindByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Photo not found")
		}
		return apperr.Dependency("Failed to load photo", err)
	}

	comment, ok := photo.FindComment(commentID)
	if !ok {
		return apperr.NotFound("Comment not found")
	}

	target := auth.Target{PhotoOwnerID: photo.UserID, CommentAuthorID: comment.UserID}
	if err := auth.Check(actor, auth.OpDeleteComment, target); err != nil {
		return err
	}

	if err := s.photos.RemoveComment(ctx, photoID, commentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return apperr.Dependency("Failed to delete comment", err)
	}
	return nil
}
