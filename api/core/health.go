package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/storage"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler 依赖健康检查
type HealthHandler struct {
	database database.Provider
	storage  storage.Provider
	cache    cache.Provider
}

func NewHealthHandler(db database.Provider, blobs storage.Provider, cacheProvider cache.Provider) *HealthHandler {
	return &HealthHandler{database: db, storage: blobs, cache: cacheProvider}
}

// Handle 任一依赖异常时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{
		"database": checkDatabaseHealth(ctx, h.database),
		"storage":  checkStorageHealth(ctx, h.storage),
		"cache":    checkCacheHealth(ctx, h.cache),
	}

	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if _, err := provider.Exists(ctx, "health:check"); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "error: no default storage provider"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
