package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supervision/internal/importer"
)

// multipart 头部等额外开销
const uploadOverhead = 1 << 20

// Upload 上传时段快照
// POST /api/upload?slot=morning|afternoon（multipart 字段 file）
func (h *Handler) Upload(c *gin.Context) {
	slot := c.Query("slot")
	if slot == "" {
		slot = c.PostForm("slot")
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, importer.MaxUploadSize+uploadOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(c, importer.ErrTooLarge)
			return
		}
		badRequest(c, "Nenhum arquivo enviado")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	res, err := h.importer.Import(c.Request.Context(), importer.Request{
		Slot:     slot,
		Filename: fh.Filename,
		Body:     f,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListUploads 最近的上传记录
// GET /api/uploads?limit=
func (h *Handler) ListUploads(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		badRequest(c, "limit inválido")
		return
	}

	logs, err := h.uploads.ListUploadLogs(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
