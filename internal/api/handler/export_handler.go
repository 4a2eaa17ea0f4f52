package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/service"
	"nutri-assistant/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMonth 导出月度菜单
// GET /api/v1/meal-plans/:school_id/:year/:month/export
func (h *ExportHandler) ExportMonth(c *gin.Context) {
	schoolID, ok := mustGetSchoolID(c)
	if !ok {
		return
	}
	year, month, ok := mustGetYearMonth(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMonth(c.Request.Context(), schoolID, year, month)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMealPlanNotFound):
		response.NotFound(c, 24001, "该月暂无菜单")
	case errors.Is(err, service.ErrExportNoMenus):
		response.BadRequest(c, 24002, "该月菜单中没有菜单行")
	default:
		response.InternalError(c)
	}
}
