package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/service"
	pkgerrors "nutri-assistant/backend/pkg/errors"
	"nutri-assistant/backend/pkg/response"
)

// costPageSize 台账列表默认每页数量
const costPageSize = 20

// CostHandler 单价台账模块 HTTP 处理器
type CostHandler struct {
	costSvc service.CostService
}

// NewCostHandler 创建 CostHandler
func NewCostHandler(costSvc service.CostService) *CostHandler {
	return &CostHandler{costSvc: costSvc}
}

// ListCosts 台账分页列表（页码从 0 开始）
// GET /api/v1/costs?page=0&size=20
func (h *CostHandler) ListCosts(c *gin.Context) {
	var req dto.CostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.costSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetSize(costPageSize))
}

// Lookup 按菜名查价；未登记时返回默认单价
// GET /api/v1/costs/lookup?name=김치찌개
func (h *CostHandler) Lookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.BadRequest(c, 10001, "name 不能为空")
		return
	}

	entry, err := h.costSvc.Lookup(c.Request.Context(), name)
	if err != nil {
		handleCostError(c, err)
		return
	}

	response.OK(c, entry)
}

// BulkUpsert 批量写入单价
// POST /api/v1/costs/bulk
func (h *CostHandler) BulkUpsert(c *gin.Context) {
	var req dto.BulkUpsertCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.costSvc.BulkUpsert(c.Request.Context(), &req)
	if err != nil {
		handleCostError(c, err)
		return
	}

	response.OK(c, result)
}

// Reprice 全台账按新年份重新定价
// POST /api/v1/costs/reprice
func (h *CostHandler) Reprice(c *gin.Context) {
	var req dto.RepriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.costSvc.RepriceForYear(c.Request.Context(), req.Year)
	if err != nil {
		handleCostError(c, err)
		return
	}

	response.OK(c, result)
}

func handleCostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCostNameEmpty):
		response.BadRequest(c, 21001, "菜名不能为空")
	case errors.Is(err, service.ErrCostPriceNegative):
		response.BadRequest(c, 21002, err.Error())
	case errors.Is(err, pkgerrors.ErrLedgerPrecondition):
		response.Conflict(c, 21003, "台账为空，无法重新定价")
	default:
		response.InternalError(c)
	}
}
