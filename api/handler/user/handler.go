package user

import (
	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/services/accounts"
	"github.com/anoixa/photo-share/internal/services/cascade"
	"github.com/gin-gonic/gin"
)

// Handler 用户注册、查询与删除
type Handler struct {
	accounts     *accounts.Service
	cascade      *cascade.Coordinator
	secureCookie bool
}

func NewHandler(accounts *accounts.Service, coordinator *cascade.Coordinator, secureCookie bool) *Handler {
	return &Handler{accounts: accounts, cascade: coordinator, secureCookie: secureCookie}
}

// Register 注册新用户
// @Summary      Register
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      accounts.RegisterRequest  true  "New user"
// @Success      200      {object}  common.Response
// @Failure      400      {object}  common.Response  "Validation failed"
// @Failure      409      {object}  common.Response  "Login name already exists"
// @Router       /user [post]
func (h *Handler) Register(c *gin.Context) {
	var req accounts.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondAppError(c, apperr.Validation("Invalid request body"))
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "User registered", user)
}

// List 用户列表
// @Summary      List users
// @Tags         user
// @Produce      json
// @Success      200  {object}  common.Response
// @Failure      401  {object}  common.Response
// @Router       /user/list [get]
func (h *Handler) List(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, users)
}

// Get 用户详情
// @Summary      Get user
// @Tags         user
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Router       /user/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	user, err := h.accounts.GetUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}

// Delete 删除自己的账号及全部图片与评论
// @Summary      Delete user
// @Tags         user
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response  "Only the user themself"
// @Failure      500  {object}  common.Response
// @Router       /user/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	report, err := h.cascade.DeleteUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	middleware.ClearSessionCookie(c, h.secureCookie)
	common.RespondSuccessMessage(c, "User deleted", gin.H{
		"completed_steps": report.Count(cascade.OutcomeOK),
		"logged_errors":   report.Count(cascade.OutcomeLogged),
	})
}
