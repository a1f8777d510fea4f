package images

import (
	"errors"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"github.com/anoixa/photo-share/utils/validator"
	"github.com/gin-gonic/gin"
)

// Handler 图片文件访问
type Handler struct {
	blobs storage.Provider
}

func NewHandler(blobs storage.Provider) *Handler {
	return &Handler{blobs: blobs}
}

// Serve 返回图片文件内容
// @Summary      Get image bytes
// @Tags         images
// @Produce      image/jpeg,image/png,image/gif,image/webp,image/bmp
// @Param        file_name  path  string  true  "Stored file name"
// @Success      200
// @Failure      404  {object}  common.Response
// @Router       /images/{file_name} [get]
func (h *Handler) Serve(c *gin.Context) {
	name := c.Param("file_name")
	if !storage.IsValidStoragePath(name) {
		common.RespondAppError(c, apperr.NotFound("Image not found"))
		return
	}

	reader, err := h.blobs.GetWithContext(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			common.RespondAppError(c, apperr.NotFound("Image not found"))
			return
		}
		common.RespondAppError(c, apperr.Dependency("Failed to read image", err))
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(reader, head)
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		common.RespondAppError(c, apperr.Dependency("Failed to read image", err))
		return
	}
	if contentType, ok := validator.DetectImageType(head[:n]); ok {
		c.Header("Content-Type", contentType)
	}

	utils.LogIfDevf("[Images] Serving %s", utils.SanitizeLogMessage(name))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(c.Writer, c.Request, path.Base(name), time.Time{}, reader)
}
