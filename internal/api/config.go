package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supervision/internal/dashboard"
	"supervision/internal/model"
	"supervision/internal/segment"
)

// ConfigResponse 配置响应
type ConfigResponse struct {
	model.Settings
	AccumulatedWeight float64                               `json:"accumulatedWeight"`
	Snapshots         map[model.Slot]dashboard.SnapshotInfo `json:"snapshots"`
}

// GetConfig 获取业务配置与快照状态
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	ctx := c.Request.Context()

	settings, err := h.settings.GetSettings(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.configResponse(settings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateConfig 局部更新业务配置
// PUT /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "JSON inválido")
		return
	}

	settings, err := h.settings.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.configResponse(settings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) configResponse(settings model.Settings) (*ConfigResponse, error) {
	resp := &ConfigResponse{
		Settings:  settings,
		Snapshots: make(map[model.Slot]dashboard.SnapshotInfo, 2),
	}
	resp.AccumulatedWeight = accumulatedWeight(settings)
	for _, slot := range model.Slots() {
		info, err := dashboard.Stat(h.dashboard.DataDir(), slot)
		if err != nil {
			return nil, err
		}
		resp.Snapshots[slot] = info
	}
	return resp, nil
}

func accumulatedWeight(s model.Settings) float64 {
	return segment.AccumulatedWeight(s.Weights, s.CurrentCycle)
}
