package core

import (
	"net/http"
	"time"

	"github.com/anoixa/photo-share/api/common"
	"github.com/anoixa/photo-share/api/handler/admin"
	"github.com/anoixa/photo-share/api/handler/comments"
	"github.com/anoixa/photo-share/api/handler/diagnostics"
	"github.com/anoixa/photo-share/api/handler/images"
	handlerPhotos "github.com/anoixa/photo-share/api/handler/photos"
	"github.com/anoixa/photo-share/api/handler/user"
	"github.com/anoixa/photo-share/api/middleware"
	"github.com/anoixa/photo-share/cache"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/internal/auth/session"
	"github.com/anoixa/photo-share/internal/services/accounts"
	"github.com/anoixa/photo-share/internal/services/cascade"
	"github.com/anoixa/photo-share/internal/services/photos"
	"github.com/anoixa/photo-share/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Config   *config.Config
	Database database.Provider
	Storage  storage.Provider
	Cache    cache.Provider
	Sessions session.Store
	Codec    *session.Codec
	Accounts *accounts.Service
	Photos   *photos.Service
	Cascade  *cascade.Coordinator
}

// NewRouter 创建 gin 路由
func NewRouter(deps *ServerDependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	_ = router.SetTrustedProxies(nil)

	uploadMax := cfg.UploadMaxBytes()
	router.MaxMultipartMemory = uploadMax

	limiter := middleware.NewConcurrencyLimiter(cfg.MaxConcurrency)
	router.Use(limiter.Middleware())
	// multipart 包装需要额外空间
	router.Use(middleware.MaxBytesReader(uploadMax + 1<<20))
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	registerBasicRoutes(router, deps, limiter)

	imageHandler := images.NewHandler(deps.Storage)
	router.GET("/images/:file_name", imageHandler.Serve)

	registerAPIRoutes(router, deps, middleware.NewConcurrencyLimiter(cfg.UploadConcurrency))

	if !config.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return router
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies, limiter *middleware.ConcurrencyLimiter) {
	healthHandler := NewHealthHandler(deps.Database, deps.Storage, deps.Cache)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		metrics := middleware.GetMetrics()
		for k, v := range limiter.Stats() {
			metrics[k] = v
		}
		context.JSON(http.StatusOK, metrics)
	})

	if deps.Database != nil {
		diagHandler := diagnostics.NewHandler(deps.Database.Schema())
		router.GET("/test", diagHandler.Dispatch)
		router.GET("/test/:p", diagHandler.Dispatch)
	}
}

// registerAPIRoutes 注册业务路由
func registerAPIRoutes(router *gin.Engine, deps *ServerDependencies, uploads *middleware.ConcurrencyLimiter) {
	secure := config.IsProduction()
	adminHandler := admin.NewHandler(deps.Accounts, deps.Codec, secure)
	userHandler := user.NewHandler(deps.Accounts, deps.Cascade, secure)
	photoHandler := handlerPhotos.NewHandler(deps.Photos, deps.Cascade, deps.Config.UploadMaxBytes())
	commentHandler := comments.NewHandler(deps.Photos)

	api := router.Group("")
	api.Use(middleware.NoStore())
	api.Use(middleware.Session(deps.Sessions, deps.Codec))

	// 匿名接口
	api.POST("/admin/login", adminHandler.Login) // POST /admin/login
	api.POST("/user", userHandler.Register)      // POST /user

	uploadGate := uploads.MiddlewareWithBlock(uploadQueueTimeout(deps.Config))

	authed := api.Group("")
	authed.Use(middleware.RequireSession())
	{
		authed.POST("/admin/logout", adminHandler.Logout) // POST /admin/logout

		authed.GET("/user/list", userHandler.List)     // GET /user/list
		authed.GET("/user/:id", userHandler.Get)       // GET /user/{id}
		authed.DELETE("/user/:id", userHandler.Delete) // DELETE /user/{id}

		authed.GET("/photosOfUser/:id", photoHandler.PhotosOfUser)  // GET /photosOfUser/{id}
		authed.POST("/photos/new", uploadGate, photoHandler.Upload) // POST /photos/new
		authed.DELETE("/photos/:id", photoHandler.Delete)           // DELETE /photos/{id}

		authed.POST("/commentsOfPhoto/:photo_id", commentHandler.Add)                  // POST /commentsOfPhoto/{photo_id}
		authed.DELETE("/commentsOfPhoto/:photo_id/:comment_id", commentHandler.Delete) // DELETE /commentsOfPhoto/{photo_id}/{comment_id}
	}
}

// uploadQueueTimeout 上传排队的最长等待时间
func uploadQueueTimeout(cfg *config.Config) time.Duration {
	if cfg.UploadQueueTimeout <= 0 {
		return 5 * time.Second
	}
	return cfg.UploadQueueTimeout
}
