package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/wfunc/game-library/internal/api"
	"github.com/wfunc/game-library/internal/config"
	"github.com/wfunc/game-library/internal/database"
	"github.com/wfunc/game-library/internal/errors"
	"github.com/wfunc/game-library/internal/logger"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	db         *gorm.DB
	store      *storage.Store
	gameRepo   repository.GameRepository
	httpServer *http.Server

	shutdownCh chan struct{}
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本信息
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 显示帮助信息
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载 .env 文件（不存在时忽略）
	_ = godotenv.Load()

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	// 打印启动信息
	printStartInfo(cfg)

	// 创建服务器实例
	server := NewServer(cfg)

	// 启动服务器
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	// 等待退出信号
	server.WaitForShutdown()

	// 优雅关闭
	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger.GetLogger(),
		shutdownCh: make(chan struct{}),
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动游戏库服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	// 初始化各个组件
	if err := s.initComponents(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "初始化组件失败")
	}

	// 启动HTTP服务
	if err := s.startHTTPServer(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "启动服务失败")
	}

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.cfg = newCfg
	})

	s.logger.Info("服务器启动成功",
		zap.String("http", fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)),
		zap.String("store", s.cfg.Store.Backend),
	)

	return nil
}

// initComponents 初始化组件
func (s *Server) initComponents() error {
	s.logger.Info("初始化组件...")

	// 初始化上传文件存储
	if err := s.initStore(); err != nil {
		return err
	}

	// 初始化游戏目录后端
	if err := s.initCatalogBackend(); err != nil {
		return err
	}

	s.logger.Info("所有组件初始化完成")
	return nil
}

// initStore 初始化上传文件存储
func (s *Server) initStore() error {
	s.logger.Info("初始化上传文件存储...",
		zap.String("root", s.cfg.Storage.UploadRoot),
	)

	s.store = storage.NewStore(s.cfg.Storage.UploadRoot)
	if err := s.store.EnsureBuckets(); err != nil {
		return errors.Wrap(err, errors.ErrStorageWrite, "创建上传目录失败")
	}

	return nil
}

// initCatalogBackend 按配置选择游戏目录后端
func (s *Server) initCatalogBackend() error {
	switch s.cfg.Store.Backend {
	case "database":
		s.logger.Info("初始化数据库...",
			zap.String("driver", s.cfg.Database.Driver),
		)

		db, err := database.Connect(&s.cfg.Database)
		if err != nil {
			return errors.Wrap(err, errors.ErrCatalogConnect, "初始化数据库连接失败")
		}
		s.db = db

		if s.cfg.Database.AutoMigrate {
			s.logger.Info("执行数据库自动迁移...")
			if err := database.AutoMigrate(db); err != nil {
				return errors.Wrap(err, errors.ErrCatalogConnect, "数据库迁移失败")
			}
		}

		s.gameRepo = repository.NewGameRepository(db)

	case "file":
		s.logger.Info("初始化平面文件目录...",
			zap.String("path", s.cfg.Store.Path),
		)

		s.gameRepo = repository.NewFileGameRepository(s.cfg.Store.Path)

	default:
		return errors.Newf(errors.ErrConfigValidate, "未知的目录后端: %s", s.cfg.Store.Backend)
	}

	return nil
}

// startHTTPServer 启动HTTP服务
func (s *Server) startHTTPServer() error {
	if s.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(s.gameRepo, s.store, s.cfg.Storage.PublicRoot, s.logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP服务异常退出", zap.Error(err))
			close(s.shutdownCh)
		}
	}()

	return nil
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	select {
	case sig := <-sigCh:
		s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
	case <-s.shutdownCh:
	}
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求并等待在途请求完成
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("关闭超时，强制退出", zap.Error(err))
		}
	}

	// 关闭各个组件
	if err := s.closeComponents(); err != nil {
		s.logger.Error("关闭组件失败", zap.Error(err))
		return err
	}

	// 同步日志
	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}

	return nil
}

// closeComponents 关闭组件
func (s *Server) closeComponents() error {
	s.logger.Info("关闭组件...")

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("关闭数据库失败", zap.Error(err))
		}
	}

	s.logger.Info("所有组件已关闭")
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("游戏库服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("游戏库服务器")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  game-library-server [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  GAME_LIBRARY_ENV          运行环境 (development/production/test)")
	fmt.Println("  GAME_LIBRARY_CONFIG       配置文件路径")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  game-library-server -config=/path/to/config.yaml")
	fmt.Println("  game-library-server -version")
}

// printStartInfo 打印启动信息
func printStartInfo(cfg *config.Config) {
	fmt.Printf("游戏库服务器 | 版本: %s | 模式: %s | PID: %d\n", Version, cfg.Server.Mode, os.Getpid())
	fmt.Printf("目录后端: %s | 上传目录: %s\n", cfg.Store.Backend, cfg.Storage.UploadRoot)
	fmt.Println("═══════════════════════════════════════════════════════════════")
}
