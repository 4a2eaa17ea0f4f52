package generator

import "github.com/shopspring/decimal"

// Report 上月汇总报告，作为生成请求的可选上下文
type Report struct {
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

// UnitCost 单价台账条目（当年价格）
type UnitCost struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// MonthRequest 月度菜单生成请求
type MonthRequest struct {
	SchoolID       uint64     `json:"school_id"`
	Year           int        `json:"year"`
	Month          int        `json:"month"`
	MealTypes      []string   `json:"meal_types"`
	TargetCost     int        `json:"target_cost,omitempty"` // 每餐目标单价
	UnitCosts      []UnitCost `json:"unit_costs,omitempty"`
	PreviousReport *Report    `json:"previous_report,omitempty"`
}

// GeneratedMeal 生成服务返回的单餐数据；菜位文本已带过敏原注释
type GeneratedMeal struct {
	Date     string          `json:"date"` // 2006-01-02
	MealType string          `json:"meal_type"`
	Rice     string          `json:"rice"`
	Soup     string          `json:"soup"`
	Main1    string          `json:"main1"`
	Main2    string          `json:"main2"`
	Side     string          `json:"side"`
	Kimchi   string          `json:"kimchi"`
	Dessert  string          `json:"dessert"`
	Kcal     decimal.Decimal `json:"kcal"`
	Carb     decimal.Decimal `json:"carb"`
	Prot     decimal.Decimal `json:"prot"`
	Fat      decimal.Decimal `json:"fat"`
	Cost     int             `json:"cost"`
	Comment  string          `json:"comment,omitempty"`
}

// Slots 按菜位顺序返回 7 个菜位文本
func (m *GeneratedMeal) Slots() [7]string {
	return [7]string{m.Rice, m.Soup, m.Main1, m.Main2, m.Side, m.Kimchi, m.Dessert}
}

// MonthResponse 月度菜单生成响应
type MonthResponse struct {
	Meals []GeneratedMeal `json:"meals"`
}

// ReplaceRequest 单餐替换请求
type ReplaceRequest struct {
	SchoolID       uint64   `json:"school_id"`
	Date           string   `json:"date"`
	MealType       string   `json:"meal_type"`
	CurrentItems   []string `json:"current_items"`
	Reason         string   `json:"reason,omitempty"`
	PreviousReport *Report  `json:"previous_report,omitempty"`
}

// ReplaceResponse 单餐替换响应；菜名不带过敏原注释
type ReplaceResponse struct {
	Items   []string        `json:"items"`
	Kcal    decimal.Decimal `json:"kcal"`
	Carb    decimal.Decimal `json:"carb"`
	Prot    decimal.Decimal `json:"prot"`
	Fat     decimal.Decimal `json:"fat"`
	Cost    int             `json:"cost"`
	Reason  string          `json:"reason,omitempty"`
	Comment string          `json:"comment,omitempty"`
}
