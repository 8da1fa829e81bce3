package api

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/service"
	"github.com/wfunc/game-library/internal/storage"
	"go.uber.org/zap"
)

// Router API路由器
type Router struct {
	engine      *gin.Engine
	services    *service.Services
	store       *storage.Store
	gameHandler *GameHandler
	publicRoot  string
	log         *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(gameRepo repository.GameRepository, store *storage.Store, publicRoot string, log *zap.Logger) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(cors.Default()) // 允许任意来源，与前端页面同源限制无关

	// 创建服务
	services := service.NewServices(gameRepo, log)

	// 创建处理器
	gameHandler := NewGameHandler(services.Catalog, store, log)

	router := &Router{
		engine:      engine,
		services:    services,
		store:       store,
		gameHandler: gameHandler,
		publicRoot:  publicRoot,
		log:         log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// 游戏目录API
	r.engine.GET("/games", r.gameHandler.ListGames)
	r.engine.POST("/upload-game", r.gameHandler.UploadGame)

	// 上传资源静态透传
	r.engine.GET("/uploads/:bucket/:name", r.gameHandler.ServeAsset)

	// 页面路由：学生主页与教师上传页
	r.engine.GET("/", r.servePage("users.html"))
	r.engine.GET("/teacher-zone", r.servePage("index.html"))

	// 其余路径回落到public静态资源
	r.engine.NoRoute(r.serveStatic)

	// Swagger文档（仅 -tags swagger 构建时启用）
	registerSwaggerRoutes(r.engine)
}

// Engine 返回底层Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
	})
}

// servePage 返回public目录下指定页面的处理器
func (r *Router) servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.File(filepath.Join(r.publicRoot, name))
	}
}

// serveStatic 提供public目录下的静态资源（CSS、JS、图片）
func (r *Router) serveStatic(c *gin.Context) {
	if c.Request.Method != "GET" {
		c.JSON(404, gin.H{"error": "not found"})
		return
	}

	// Clean去除..分量，路径不会逃出public目录
	rel := filepath.Clean("/" + c.Request.URL.Path)
	path := filepath.Join(r.publicRoot, rel)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		c.File(path)
		return
	}

	c.JSON(404, gin.H{"error": "not found"})
}
