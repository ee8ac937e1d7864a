package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supervision/internal/sector"
	"supervision/internal/segment"
)

// ListSectors 区域列表（按内置表顺序）
// GET /api/sectors
func (h *Handler) ListSectors(c *gin.Context) {
	c.JSON(http.StatusOK, sector.Table())
}

// ListTiers 分级定义
// GET /api/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, segment.Tiers())
}
