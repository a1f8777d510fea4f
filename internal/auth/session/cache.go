package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/internal/auth"
)

// CacheStore 基于缓存提供者的会话存储，redis 后端可在多实例间共享
// 用户索引是读改写，同一进程内用互斥锁串行化
type CacheStore struct {
	provider cache.Provider
	indexMu  sync.Mutex
}

// NewCacheStore 创建缓存会话存储
func NewCacheStore(provider cache.Provider) *CacheStore {
	return &CacheStore{provider: provider}
}

// Create 创建会话
func (s *CacheStore) Create(ctx context.Context, identity auth.Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	if err := s.provider.Set(ctx, cache.Session.Build(token), identity, 0); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	tokens, err := s.userTokens(ctx, identity.ID)
	if err != nil {
		return "", err
	}
	tokens = append(tokens, token)
	if err := s.provider.Set(ctx, cache.SessionsOfUser.Build(identity.ID), tokens, 0); err != nil {
		return "", fmt.Errorf("failed to index session: %w", err)
	}
	return token, nil
}

func (s *CacheStore) userTokens(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := s.provider.Get(ctx, cache.SessionsOfUser.Build(userID), &tokens)
	if err != nil && !cache.IsCacheMiss(err) {
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}
	return tokens, nil
}

// Resolve 解析令牌
func (s *CacheStore) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, nil
	}

	var identity auth.Identity
	if err := s.provider.Get(ctx, cache.Session.Build(token), &identity); err != nil {
		if cache.IsCacheMiss(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return &identity, nil
}

// Destroy 销毁会话
func (s *CacheStore) Destroy(ctx context.Context, token string) error {
	identity, err := s.Resolve(ctx, token)
	if err != nil || identity == nil {
		return err
	}

	if err := s.provider.Delete(ctx, cache.Session.Build(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	tokens, err := s.userTokens(ctx, identity.ID)
	if err != nil {
		log.Printf("[Session] Failed to update index for user %s: %v", identity.ID, err)
		return nil
	}
	remaining := tokens[:0]
	for _, t := range tokens {
		if t != token {
			remaining = append(remaining, t)
		}
	}

	key := cache.SessionsOfUser.Build(identity.ID)
	if len(remaining) == 0 {
		err = s.provider.Delete(ctx, key)
	} else {
		err = s.provider.Set(ctx, key, remaining, 0)
	}
	if err != nil {
		log.Printf("[Session] Failed to update index for user %s: %v", identity.ID, err)
	}
	return nil
}

// DestroyUser 销毁用户的全部会话
func (s *CacheStore) DestroyUser(ctx context.Context, userID string) (int, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	tokens, err := s.userTokens(ctx, userID)
	if err != nil {
		return 0, err
	}

	destroyed := 0
	for _, token := range tokens {
		if err := s.provider.Delete(ctx, cache.Session.Build(token)); err != nil {
			return destroyed, fmt.Errorf("failed to delete session: %w", err)
		}
		destroyed++
	}
	if err := s.provider.Delete(ctx, cache.SessionsOfUser.Build(userID)); err != nil {
		return destroyed, fmt.Errorf("failed to delete session index: %w", err)
	}
	return destroyed, nil
}
