package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/service"
	"nutri-assistant/backend/pkg/response"
)

// FoodHandler 营养目录模块 HTTP 处理器
type FoodHandler struct {
	foodSvc service.FoodService
}

// NewFoodHandler 创建 FoodHandler
func NewFoodHandler(foodSvc service.FoodService) *FoodHandler {
	return &FoodHandler{foodSvc: foodSvc}
}

// ImportFoods 上传 Excel 导入营养目录
// POST /api/v1/foods/import (multipart, 字段名 file)
func (h *FoodHandler) ImportFoods(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 23000, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	result, err := h.foodSvc.ImportFoods(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportInvalidFile):
			response.BadRequest(c, 23001, "无法解析 Excel 文件")
		case errors.Is(err, service.ErrImportNoHeader):
			response.BadRequest(c, 23002, "Excel 缺少 식품명 表头")
		case errors.Is(err, service.ErrImportEmpty):
			response.BadRequest(c, 23003, "Excel 中没有可导入的数据行")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
