package middleware

import (
	"net/http"
	"strings"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/gin-gonic/gin"
)

const (
	ContextIdentityKey = "identity"
	ContextTokenKey    = "session_token"
)

// Session 从 cookie 或 Authorization: Bearer 解析会话，不强制登录
func Session(store session.Store, codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := sessionValue(c)
		if value == "" {
			c.Next()
			return
		}

		// 伪造或篡改的值视为未登录
		token, err := codec.Decode(value)
		if err != nil {
			c.Next()
			return
		}

		identity, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			common.RespondAppError(c, apperr.Dependency("Failed to resolve session", err))
			c.Abort()
			return
		}
		if identity != nil {
			c.Set(ContextIdentityKey, identity)
			c.Set(ContextTokenKey, token)
		}
		c.Next()
	}
}

func sessionValue(c *gin.Context) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// RequireSession 未登录时返回 401
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			common.RespondAppError(c, apperr.Unauthorized("Unauthorized"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity 当前请求的登录身份，未登录返回 nil
func CurrentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*auth.Identity)
	return identity
}

// CurrentToken 当前请求的会话令牌
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// SetSessionCookie 写入会话 cookie
func SetSessionCookie(c *gin.Context, value string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie 让浏览器删除会话 cookie
func ClearSessionCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
