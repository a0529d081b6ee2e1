package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"yoyboard/internal/api"
	"yoyboard/internal/config"
	"yoyboard/internal/store"
)

var log = logging.MustGetLogger("server")

//go:embed all:dist
var staticFiles embed.FS

// DevFrontendURL 开发模式下前端开发服务器地址
const DevFrontendURL = "http://localhost:5173"

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	http   *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "yoyboard.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	// 数据库中保存的运行时配置优先
	if err := api.LoadSettings(sqliteStore, cfg); err != nil {
		log.Warningf("ignore stored settings: %v", err)
	}

	apiHandler := api.NewHandler(sqliteStore, cfg, api.Options{
		UploadDir: filepath.Join(dataDir, "uploads"),
		ExportDir: filepath.Join(dataDir, "exports"),
	})

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		router: router,
		store:  sqliteStore,
		api:    apiHandler,
		http: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if err := s.setupRoutes(devMode); err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	log.Infof("database: %s", dbPath)
	return s, nil
}

// requestLogger 使用包日志记录请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware 允许前端开发服务器跨域访问
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) error {
	s.router.Use(corsMiddleware())

	apiGroup := s.router.Group("/api")
	s.api.RegisterRoutes(apiGroup)

	// 静态资源
	if devMode {
		// 开发模式：重定向到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, DevFrontendURL+c.Request.URL.Path)
		})
		return nil
	}

	// 生产模式：使用embed的静态资源
	sub, err := fs.Sub(staticFiles, "dist")
	if err != nil {
		return fmt.Errorf("embedded dashboard: %w", err)
	}
	assetsSub, err := fs.Sub(sub, "assets")
	if err != nil {
		return fmt.Errorf("embedded assets: %w", err)
	}
	s.router.StaticFS("/assets", http.FS(assetsSub))

	s.router.GET("/favicon.svg", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)
	// SPA 路由 fallback
	s.router.NoRoute(index)
	return nil
}

// Handler 返回 HTTP 处理器（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，Shutdown 后返回 nil
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭并释放数据库
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
