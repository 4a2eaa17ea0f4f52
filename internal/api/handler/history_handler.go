package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/service"
	"nutri-assistant/backend/pkg/response"
)

// HistoryHandler 修改历史模块 HTTP 处理器
type HistoryHandler struct {
	historySvc service.HistoryService
}

// NewHistoryHandler 创建 HistoryHandler
func NewHistoryHandler(historySvc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// ListHistories 查询修改历史（id 降序，页码从 0 开始）
// GET /api/v1/histories?school_id=7&start=2025-03-01&end=2025-03-31&action_type=MANUAL_UPDATE
func (h *HistoryHandler) ListHistories(c *gin.Context) {
	var req dto.HistoryQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	page, err := h.historySvc.Query(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 22001, "日期格式错误，应为 YYYY-MM-DD")
		case errors.Is(err, service.ErrInvalidDateRange):
			response.BadRequest(c, 22002, "日期区间需同时提供开始与结束日期，且开始不晚于结束")
		case errors.Is(err, service.ErrInvalidActionType):
			response.BadRequest(c, 22003, "不支持的修改类型")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OKPage(c, page.Items, page.Total, page.Page, page.Size)
}
