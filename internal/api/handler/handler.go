package handler

import "nutri-assistant/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	MealPlan *MealPlanHandler
	Cost     *CostHandler
	History  *HistoryHandler
	Food     *FoodHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		MealPlan: NewMealPlanHandler(svc.MealPlan),
		Cost:     NewCostHandler(svc.Cost),
		History:  NewHistoryHandler(svc.History),
		Food:     NewFoodHandler(svc.Food),
		Export:   NewExportHandler(svc.Export),
	}
}
