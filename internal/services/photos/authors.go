package photos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/database/repo"
)

// resolveLimit 并发解析作者的上限
const resolveLimit = 8

// AuthorResolver 解析作者信息，命中缓存时不访问仓库
type AuthorResolver struct {
	users repo.UserRepository
	cache cache.Provider
	ttl   time.Duration
}

// NewAuthorResolver 创建作者解析器，provider 可为空
func NewAuthorResolver(users repo.UserRepository, provider cache.Provider, ttl time.Duration) *AuthorResolver {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthorResolver{users: users, cache: provider, ttl: ttl}
}

// Resolve 解析单个作者，已删除的作者返回占位信息
func (r *AuthorResolver) Resolve(ctx context.Context, userID string) (Author, error) {
	key := cache.Author.BuildID(userID)

	if r.cache != nil {
		var cached Author
		err := r.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !cache.IsCacheMiss(err) {
			log.Printf("[Photos] Author cache read failed for %s, falling back: %v", userID, err)
		}
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return unknownAuthor(userID), nil
		}
		return Author{}, fmt.Errorf("failed to resolve author %s: %w", userID, err)
	}

	author := authorOf(user)
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, author, r.ttl); err != nil {
			log.Printf("[Photos] Author cache write failed for %s: %v", userID, err)
		}
	}
	return author, nil
}

// ResolveAll 并发解析一组作者
func (r *AuthorResolver) ResolveAll(ctx context.Context, userIDs []string) (map[string]Author, error) {
	result := make(map[string]Author, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)

	for _, id := range userIDs {
		g.Go(func() error {
			author, err := r.Resolve(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			result[id] = author
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
