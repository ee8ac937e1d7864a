package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"supervision/internal/dashboard"
	"supervision/internal/importer"
	"supervision/internal/logger"
	"supervision/internal/model"
)

// errorResponse 错误响应
type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError 将领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, dashboard.ErrNoData):
		c.JSON(http.StatusNotFound, errorResponse{
			Error:   "Nenhum dado disponível",
			Message: "O snapshot ainda não foi carregado. Aguarde o administrador fazer o upload.",
		})
	case errors.Is(err, dashboard.ErrSectorNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Setor não encontrado", Message: err.Error()})
	case errors.Is(err, dashboard.ErrResellerNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Revendedor não encontrado", Message: err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Configuração inválida", Details: verr.Problems})
	case errors.Is(err, importer.ErrInvalidSlot):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Slot inválido. Use manha ou tarde.", Message: err.Error()})
	case errors.Is(err, importer.ErrUnsupportedFile):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Arquivo não suportado. Use .csv, .txt ou .xlsx.", Message: err.Error()})
	case errors.Is(err, importer.ErrEmptySnapshot):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "O arquivo não contém registros válidos", Message: err.Error()})
	case errors.Is(err, importer.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "Arquivo muito grande (máximo 50MB)"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Erro interno", Message: err.Error()})
	}
}
