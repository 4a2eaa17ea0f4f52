package dto

import (
	"github.com/shopspring/decimal"

	"nutri-assistant/backend/internal/menu"
)

// ── 菜单计划模块 DTO ──

// GenerateMealPlanRequest 生成月度菜单请求
type GenerateMealPlanRequest struct {
	SchoolID   uint64   `json:"school_id"   binding:"required"`
	Year       int      `json:"year"        binding:"required,min=2000,max=2100"`
	Month      int      `json:"month"       binding:"required,min=1,max=12"`
	MealTypes  []string `json:"meal_types"  binding:"omitempty,dive,oneof=LUNCH DINNER"` // 为空时默认仅午餐
	TargetCost int      `json:"target_cost" binding:"omitempty,min=0"`
}

// AIReplaceRequest AI 单餐替换请求
type AIReplaceRequest struct {
	SchoolID uint64 `json:"school_id" binding:"required"`
	Date     string `json:"date"      binding:"required"` // "2025-03-04"
	MealType string `json:"meal_type" binding:"required,oneof=LUNCH DINNER"`
	Reason   string `json:"reason"    binding:"omitempty,max=500"`
}

// ManualUpdateRequest 手动编辑请求；items 按菜位顺序，超过 7 个时截断
type ManualUpdateRequest struct {
	SchoolID uint64   `json:"school_id" binding:"required"`
	Date     string   `json:"date"      binding:"required"`
	MealType string   `json:"meal_type" binding:"required,oneof=LUNCH DINNER"`
	Items    []string `json:"items"     binding:"required,min=1"`
	Reason   string   `json:"reason"    binding:"omitempty,max=500"`
}

// DailyMenuResponse 单餐菜单
type DailyMenuResponse struct {
	ID        uint64               `json:"id"`
	Date      string               `json:"date"`
	MealType  string               `json:"meal_type"`
	Rice      string               `json:"rice,omitempty"`
	Soup      string               `json:"soup,omitempty"`
	Main1     string               `json:"main1,omitempty"`
	Main2     string               `json:"main2,omitempty"`
	Side      string               `json:"side,omitempty"`
	Kimchi    string               `json:"kimchi,omitempty"`
	Dessert   string               `json:"dessert,omitempty"`
	Kcal      decimal.Decimal      `json:"kcal"`
	Carb      decimal.Decimal      `json:"carb"`
	Protein   decimal.Decimal      `json:"protein"`
	Fat       decimal.Decimal      `json:"fat"`
	Cost      int                  `json:"cost"`
	Comment   string               `json:"comment,omitempty"`
	RawItems  []string             `json:"raw_items"`
	Allergens menu.AllergenSummary `json:"allergens"`
	UpdatedAt string               `json:"updated_at"`
}

// MonthlyReport 月度汇总
type MonthlyReport struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	MealCount         int             `json:"meal_count"`
	AvgKcal           decimal.Decimal `json:"avg_kcal"`
	AvgCarb           decimal.Decimal `json:"avg_carb"`
	AvgProtein        decimal.Decimal `json:"avg_protein"`
	AvgFat            decimal.Decimal `json:"avg_fat"`
	TotalCost         int             `json:"total_cost"`
	AllergenFrequency map[int]int     `json:"allergen_frequency"`
	TopItems          []string        `json:"top_items"`
}

// MonthlyPlanResponse 月度菜单
type MonthlyPlanResponse struct {
	ID       uint64              `json:"id"`
	SchoolID uint64              `json:"school_id"`
	Year     int                 `json:"year"`
	Month    int                 `json:"month"`
	Menus    []DailyMenuResponse `json:"menus"`
	Report   MonthlyReport       `json:"report"`
}

// DailyViewResponse 日视图（同日午餐在前）
type DailyViewResponse struct {
	SchoolID uint64              `json:"school_id"`
	Date     string              `json:"date"`
	Menus    []DailyMenuResponse `json:"menus"`
}

// WeeklyViewResponse 周视图（起始日起连续 7 天，无菜单的日期 menus 为空）
type WeeklyViewResponse struct {
	SchoolID  uint64              `json:"school_id"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Days      []DailyViewResponse `json:"days"`
}

// MenuMutationResponse 单餐修改结果
type MenuMutationResponse struct {
	Menu       DailyMenuResponse `json:"menu"`
	ActionType string            `json:"action_type"`
	Unmatched  []string          `json:"unmatched,omitempty"` // 营养目录未命中的菜名
}
