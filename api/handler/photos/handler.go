package photos

import (
	"errors"
	"io"
	"net/http"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/internal/services/cascade"
	photoSvc "github.com/anoixa/photo-share/internal/services/photos"
	"github.com/gin-gonic/gin"
)

// UploadField 上传表单中的文件字段
const UploadField = "uploadedphoto"

// Handler 图片列表、上传与删除
type Handler struct {
	photos   *photoSvc.Service
	cascade  *cascade.Coordinator
	maxBytes int64
}

func NewHandler(photos *photoSvc.Service, coordinator *cascade.Coordinator, maxBytes int64) *Handler {
	return &Handler{photos: photos, cascade: coordinator, maxBytes: maxBytes}
}

// PhotosOfUser 某个用户的全部图片及评论
// @Summary      Photos of user
// @Tags         photos
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  common.Response
// @Failure      404  {object}  common.Response  "User not found"
// @Router       /photosOfUser/{id} [get]
func (h *Handler) PhotosOfUser(c *gin.Context) {
	views, err := h.photos.ListPhotosOfUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, views)
}

// Upload 上传图片
// @Summary      Upload photo
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Param        uploadedphoto  formData  file  true  "Image file"
// @Success      200  {object}  common.Response
// @Failure      400  {object}  common.Response  "Missing or invalid image"
// @Failure      500  {object}  common.Response
// @Router       /photos/new [post]
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.RespondAppError(c, apperr.Validation("File too large"))
			return
		}
		common.RespondAppError(c, apperr.Validation("No file uploaded"))
		return
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		common.RespondAppError(c, apperr.Validation("File too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondAppError(c, apperr.Dependency("Failed to read upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondAppError(c, apperr.Dependency("Failed to read upload", err))
		return
	}

	photo, err := h.cascade.UploadPhoto(c.Request.Context(), middleware.CurrentIdentity(c), cascade.Upload{
		FileName: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo uploaded", photo)
}

// Delete 删除自己的图片
// @Summary      Delete photo
// @Tags         photos
// @Produce      json
// @Param        id   path      string  true  "Photo ID"
// @Success      200  {object}  common.Response
// @Failure      403  {object}  common.Response  "Not the owner"
// @Failure      404  {object}  common.Response
// @Router       /photos/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.cascade.DeletePhoto(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo deleted", nil)
}
