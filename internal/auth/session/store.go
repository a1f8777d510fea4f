package session

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/utils"
)

// tokenBytes 会话令牌的随机字节数
const tokenBytes = 32

// Store 会话存储
// 会话没有过期时间，只在登出或用户被删除时销毁
type Store interface {
	// Create 为已校验凭据的用户创建会话，返回不透明令牌
	Create(ctx context.Context, identity auth.Identity) (string, error)

	// Resolve 解析令牌，不存在时返回 nil, nil
	Resolve(ctx context.Context, token string) (*auth.Identity, error)

	// Destroy 销毁会话，令牌不存在不是错误
	Destroy(ctx context.Context, token string) error

	// DestroyUser 销毁用户的全部会话，返回销毁数量
	DestroyUser(ctx context.Context, userID string) (int, error)
}

func newToken() (string, error) {
	token, err := utils.GenerateRandomToken(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return token, nil
}

// NewStore 根据配置选择会话存储
// 进程内缓存会淘汰条目，cache 模式落在 memory 缓存上时改用 MemoryStore
func NewStore(cfg *config.Config, provider cache.Provider) (Store, error) {
	switch cfg.SessionStore {
	case "memory", "":
		return NewMemoryStore(), nil
	case "cache":
		if provider == nil {
			return nil, fmt.Errorf("session store 'cache' requires a cache provider")
		}
		if provider.Name() == "memory" {
			log.Printf("[Session] Cache provider '%s' may evict sessions, using in-process store instead", provider.Name())
			return NewMemoryStore(), nil
		}
		return NewCacheStore(provider), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}
}
