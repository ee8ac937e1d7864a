// Package server HTTP 服务器装配
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"supervision/internal/api"
	"supervision/internal/config"
	"supervision/internal/dashboard"
	"supervision/internal/importer"
	"supervision/internal/loader"
	"supervision/internal/parser"
	"supervision/internal/sector"
	"supervision/internal/store"
)

// DBFileName SQLite 文件名
const DBFileName = "supervision.db"

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	loader  *loader.Loader
	dataDir string
	http    *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	resolver := sector.Default()
	snapshotParser := parser.NewSnapshotParser(resolver)
	snapshotLoader := loader.New(snapshotParser, loader.NewCache())
	settings := store.NewSettingsStore(sqliteStore, cfg.Settings())

	handler := api.NewHandler(
		dashboard.NewService(dataDir, snapshotLoader, resolver, settings),
		settings,
		importer.NewCoordinator(dataDir, snapshotParser, snapshotLoader, sqliteStore),
		sqliteStore,
		sqliteStore,
	)

	s := &Server{
		router:  gin.New(),
		store:   sqliteStore,
		loader:  snapshotLoader,
		dataDir: dataDir,
	}
	s.setupRoutes(handler, devMode)
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *api.Handler, devMode bool) {
	s.router.Use(gin.Recovery(), api.RequestID(), api.AccessLog())

	// CORS（开发模式允许前端开发服务器跨域）
	if devMode {
		s.router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "http://localhost:5173")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		})
	}

	handler.RegisterRoutes(s.router.Group("/api"))
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	return s.router
}

// Loader 快照加载器（供文件监听预热缓存）
func (s *Server) Loader() *loader.Loader {
	return s.loader
}

// DataDir 数据目录
func (s *Server) DataDir() string {
	return s.dataDir
}

// Addr 监听地址
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run 启动服务器，阻塞直到 Shutdown
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
