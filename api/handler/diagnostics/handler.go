package diagnostics

import (
	"errors"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Handler 数据集元信息
type Handler struct {
	schema repo.SchemaRepository
}

func NewHandler(schema repo.SchemaRepository) *Handler {
	return &Handler{schema: schema}
}

// Dispatch 按路径参数 p 分发，缺省为 info
// @Summary      Diagnostics
// @Tags         test
// @Produce      json
// @Param        p    path      string  true   "info or counts"
// @Success      200  {object}  common.Response
// @Failure      400  {object}  common.Response
// @Router       /test/{p} [get]
func (h *Handler) Dispatch(c *gin.Context) {
	switch p := c.Param("p"); p {
	case "", "info":
		h.Info(c)
	case "counts":
		h.Counts(c)
	default:
		common.RespondAppError(c, apperr.Validation("Unknown test parameter: "+p))
	}
}

// Info 数据集版本信息
// @Summary      Schema info
// @Tags         test
// @Produce      json
// @Success      200  {object}  common.Response
// @Router       /test/info [get]
func (h *Handler) Info(c *gin.Context) {
	info, err := h.schema.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.RespondAppError(c, apperr.Dependency("Missing SchemaInfo", err))
			return
		}
		common.RespondAppError(c, apperr.Dependency("Failed to load schema info", err))
		return
	}
	common.RespondSuccess(c, info)
}

// Counts 各集合的记录数
// @Summary      Collection counts
// @Tags         test
// @Produce      json
// @Success      200  {object}  common.Response
// @Router       /test/counts [get]
func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.schema.Counts(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, apperr.Dependency("Failed to count collections", err))
		return
	}
	common.RespondSuccess(c, counts)
}
