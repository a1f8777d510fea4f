package comments

import (
	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/services/photos"
	"github.com/gin-gonic/gin"
)

// Handler 评论的添加与删除
type Handler struct {
	photos *photos.Service
}

func NewHandler(photos *photos.Service) *Handler {
	return &Handler{photos: photos}
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// Add 为图片添加评论
// @Summary      Add comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        photo_id  path      string          true  "Photo ID"
// @Param        request   body      commentRequest  true  "Comment text"
// @Success      200       {object}  common.Response
// @Failure      400       {object}  common.Response  "Empty comment"
// @Failure      404       {object}  common.Response  "Photo not found"
// @Router       /commentsOfPhoto/{photo_id} [post]
func (h *Handler) Add(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondAppError(c, apperr.Validation("Invalid request body"))
		return
	}

	comment, err := h.photos.AddComment(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("photo_id"), req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Comment added successfully", comment)
}

// Delete 删除评论，评论作者或图片所有者可操作
// @Summary      Delete comment
// @Tags         comments
// @Produce      json
// @Param        photo_id    path      string  true  "Photo ID"
// @Param        comment_id  path      string  true  "Comment ID"
// @Success      200         {object}  common.Response
// @Failure      403         {object}  common.Response
// @Failure      404         {object}  common.Response
// @Router       /commentsOfPhoto/{photo_id}/{comment_id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	err := h.photos.DeleteComment(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("photo_id"), c.Param("comment_id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Comment deleted", nil)
}
