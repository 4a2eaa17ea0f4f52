package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/service"
	pkgerrors "nutri-assistant/backend/pkg/errors"
	"nutri-assistant/backend/pkg/response"
)

// MealPlanHandler 菜单计划模块 HTTP 处理器
type MealPlanHandler struct {
	mealPlanSvc service.MealPlanService
}

// NewMealPlanHandler 创建 MealPlanHandler
func NewMealPlanHandler(mealPlanSvc service.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{mealPlanSvc: mealPlanSvc}
}

// Generate 生成月度菜单
// POST /api/v1/meal-plans/generate
func (h *MealPlanHandler) Generate(c *gin.Context) {
	var req dto.GenerateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	plan, err := h.mealPlanSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.Created(c, plan)
}

// GetMonthly 获取月度菜单与月度汇总
// GET /api/v1/meal-plans/:school_id/:year/:month
func (h *MealPlanHandler) GetMonthly(c *gin.Context) {
	schoolID, ok := mustGetSchoolID(c)
	if !ok {
		return
	}
	year, month, ok := mustGetYearMonth(c)
	if !ok {
		return
	}

	plan, err := h.mealPlanSvc.GetMonthly(c.Request.Context(), schoolID, year, month)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// GetDaily 日视图
// GET /api/v1/meal-plans/:school_id/daily?date=2025-03-04
func (h *MealPlanHandler) GetDaily(c *gin.Context) {
	schoolID, ok := mustGetSchoolID(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "date 不能为空")
		return
	}

	view, err := h.mealPlanSvc.GetDaily(c.Request.Context(), schoolID, date)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.OK(c, view)
}

// GetWeekly 周视图
// GET /api/v1/meal-plans/:school_id/weekly?start=2025-03-03
func (h *MealPlanHandler) GetWeekly(c *gin.Context) {
	schoolID, ok := mustGetSchoolID(c)
	if !ok {
		return
	}
	start := c.Query("start")
	if start == "" {
		response.BadRequest(c, 10001, "start 不能为空")
		return
	}

	view, err := h.mealPlanSvc.GetWeekly(c.Request.Context(), schoolID, start)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.OK(c, view)
}

// AIReplace AI 单餐替换
// POST /api/v1/daily-menus/ai-replace
func (h *MealPlanHandler) AIReplace(c *gin.Context) {
	var req dto.AIReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.mealPlanSvc.AIReplace(c.Request.Context(), &req)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.OK(c, result)
}

// ManualUpdate 手动编辑单餐
// PUT /api/v1/daily-menus/manual
func (h *MealPlanHandler) ManualUpdate(c *gin.Context) {
	var req dto.ManualUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.mealPlanSvc.ManualUpdate(c.Request.Context(), &req)
	if err != nil {
		handleMealPlanError(c, err)
		return
	}

	response.OK(c, result)
}

func handleMealPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMealPlanNotFound):
		response.NotFound(c, 20001, "月度菜单不存在")
	case errors.Is(err, service.ErrDailyMenuNotFound):
		response.NotFound(c, 20002, "菜单行不存在")
	case errors.Is(err, service.ErrInvalidMealType):
		response.BadRequest(c, 20003, err.Error())
	case errors.Is(err, service.ErrEmptyItems):
		response.BadRequest(c, 20004, "菜品列表为空")
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 20005, "日期格式错误，应为 YYYY-MM-DD")
	case errors.Is(err, generator.ErrGeneratorRejected):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 20006, "生成服务拒绝请求", err.Error())
	case errors.Is(err, pkgerrors.ErrExternalService):
		response.BadGateway(c, 50201, "生成服务暂不可用，请稍后重试", err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 20000, "记录不存在")
	default:
		response.InternalError(c)
	}
}
