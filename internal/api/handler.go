// Package api HTTP 接口（gin）
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"supervision/internal/dashboard"
	"supervision/internal/importer"
	"supervision/internal/model"
	"supervision/internal/store"
)

// ServiceName 健康检查中返回的服务名
const ServiceName = "supervision"

// SettingsManager 业务配置读写（由 store.SettingsStore 实现）
type SettingsManager interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
}

// UploadLister 上传日志查询（由 store.Store 实现）
type UploadLister interface {
	ListUploadLogs(ctx context.Context, limit int) ([]store.UploadLog, error)
}

// Pinger 健康检查依赖（由 store.Store 实现）
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler API 处理器
type Handler struct {
	dashboard *dashboard.Service
	settings  SettingsManager
	importer  *importer.Coordinator
	uploads   UploadLister
	db        Pinger
}

// NewHandler 创建 API 处理器；uploads、db 可为 nil
func NewHandler(dash *dashboard.Service, settings SettingsManager, imp *importer.Coordinator, uploads UploadLister, db Pinger) *Handler {
	return &Handler{
		dashboard: dash,
		settings:  settings,
		importer:  imp,
		uploads:   uploads,
		db:        db,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	// 看板
	router.GET("/dashboard", h.GetDashboard)
	router.GET("/resellers/:code", h.GetReseller)
	router.GET("/revendedor", h.GetResellerLegacy)

	// 参考数据
	router.GET("/sectors", h.ListSectors)
	router.GET("/setores", h.ListSectors)
	router.GET("/tiers", h.ListTiers)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PUT("/config", h.UpdateConfig)

	// 快照上传
	router.POST("/upload", h.Upload)
	router.GET("/uploads", h.ListUploads)
}
