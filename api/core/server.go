package core

import (
	"net/http"

	"github.com/anoixa/photo-share/config"
	"github.com/gin-gonic/gin"
)

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) *http.Server {
	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg := deps.Config
	router := NewRouter(deps)

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
}
