package session

import (
	"context"
	"sync"

	"github.com/anoixa/photo-share/internal/auth"
)

// MemoryStore 进程内会话表
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]auth.Identity
	byUser map[string]map[string]struct{}
}

// NewMemoryStore 创建进程内会话存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]auth.Identity),
		byUser: make(map[string]map[string]struct{}),
	}
}

// Create 创建会话
func (s *MemoryStore) Create(ctx context.Context, identity auth.Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = identity
	set, ok := s.byUser[identity.ID]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[identity.ID] = set
	}
	set[token] = struct{}{}
	return token, nil
}

// Resolve 解析令牌
func (s *MemoryStore) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, nil
	}

	s.mu.RLock()
	identity, ok := s.tokens[token]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return &identity, nil
}

// Destroy 销毁会话
func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.tokens[token]
	if !ok {
		return nil
	}
	delete(s.tokens, token)
	if set, ok := s.byUser[identity.ID]; ok {
		delete(set, token)
		if len(set) == 0 {
			delete(s.byUser, identity.ID)
		}
	}
	return nil
}

// DestroyUser 销毁用户的全部会话
func (s *MemoryStore) DestroyUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.byUser[userID]
	for token := range set {
		delete(s.tokens, token)
	}
	delete(s.byUser, userID)
	return len(set), nil
}

// Len 当前会话数
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
