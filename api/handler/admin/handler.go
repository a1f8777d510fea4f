package admin

import (
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/auth"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/internal/services/accounts"
	"github.com/gin-gonic/gin"
)

// Handler 登录与登出
type Handler struct {
	accounts     *accounts.Service
	codec        *session.Codec
	secureCookie bool
}

// NewHandler 创建处理器，secureCookie 为 true 时 cookie 只通过 HTTPS 发送
func NewHandler(accounts *accounts.Service, codec *session.Codec, secureCookie bool) *Handler {
	return &Handler{accounts: accounts, codec: codec, secureCookie: secureCookie}
}

type loginRequest struct {
	LoginName string `json:"login_name"`
	Password  string `json:"password"`
}

type loginResponse struct {
	auth.Identity
	// Token 与 cookie 值相同，可作为 Authorization: Bearer 使用
	Token string `json:"token"`
}

// Login 用户登录
// @Summary      Login
// @Description  Verify credentials and start a session
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Login name and password"
// @Success      200      {object}  common.Response
// @Failure      400      {object}  common.Response  "Invalid credentials"
// @Router       /admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondAppError(c, apperr.Validation("Invalid request body"))
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req.LoginName, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	value, err := h.codec.Encode(result.Token)
	if err != nil {
		common.RespondAppError(c, apperr.Dependency("Login failed", err))
		return
	}
	middleware.SetSessionCookie(c, value, h.secureCookie)

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		Identity: result.Identity,
		Token:    value,
	})
}

// Logout 用户登出
// @Summary      Logout
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.Response
// @Failure      401  {object}  common.Response  "Unauthorized"
// @Router       /admin/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), middleware.CurrentIdentity(c), middleware.CurrentToken(c)); err != nil {
		common.RespondAppError(c, err)
		return
	}
	middleware.ClearSessionCookie(c, h.secureCookie)
	common.Respond(c, http.StatusOK, "success", "Logout successful", nil)
}
