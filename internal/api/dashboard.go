package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sectorParam 区域参数，兼容旧的 setorId
func sectorParam(c *gin.Context) string {
	if v := strings.TrimSpace(c.Query("sector")); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("setorId"))
}

// GetDashboard 区域看板
// GET /api/dashboard?sector=
func (h *Handler) GetDashboard(c *gin.Context) {
	sector := sectorParam(c)
	if sector == "" {
		badRequest(c, "setorId é obrigatório")
		return
	}

	view, err := h.dashboard.Build(c.Request.Context(), sector)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetReseller 经销商详情
// GET /api/resellers/:code?sector=
func (h *Handler) GetReseller(c *gin.Context) {
	h.reseller(c, sectorParam(c), strings.TrimSpace(c.Param("code")))
}

// GetResellerLegacy 经销商详情（旧参数）
// GET /api/revendedor?setorId=&codigoRevendedor=
func (h *Handler) GetResellerLegacy(c *gin.Context) {
	h.reseller(c, sectorParam(c), strings.TrimSpace(c.Query("codigoRevendedor")))
}

func (h *Handler) reseller(c *gin.Context, sector, code string) {
	if sector == "" || code == "" {
		badRequest(c, "setorId e codigoRevendedor são obrigatórios")
		return
	}

	detail, err := h.dashboard.Reseller(c.Request.Context(), sector, code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
