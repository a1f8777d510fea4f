package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName 会话 Cookie 名称
const CookieName = "photo_share_session"

// ErrInvalidCookie Cookie 签名或格式无效
var ErrInvalidCookie = errors.New("invalid session cookie")

type cookieClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Codec 将会话令牌签名后放入 Cookie
type Codec struct {
	secret []byte
}

// NewCodec 创建 Cookie 编解码器
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 characters long, got %d", len(secret))
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode 签名令牌
func (c *Codec) Encode(token string) (string, error) {
	claims := cookieClaims{SID: token}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode 校验签名并取出令牌
func (c *Codec) Decode(value string) (string, error) {
	claims := &cookieClaims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.SID == "" {
		return "", ErrInvalidCookie
	}
	return claims.SID, nil
}
