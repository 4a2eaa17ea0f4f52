package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"nutri-assistant/backend/internal/menu"
)

// MonthlyPlan 月度菜单计划，对应 monthly_meal_plans
// (school_id, year, month) 唯一；重新生成时整体替换其下所有 DailyMenu
type MonthlyPlan struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"                          json:"id"`
	SchoolID uint64 `gorm:"not null;uniqueIndex:uk_monthly_plan_school_ym"    json:"school_id"`
	Year     int    `gorm:"not null;uniqueIndex:uk_monthly_plan_school_ym"    json:"year"`
	Month    int    `gorm:"not null;uniqueIndex:uk_monthly_plan_school_ym"    json:"month"`
	BaseModel

	// 关联
	DailyMenus []DailyMenu `gorm:"foreignKey:MonthlyPlanID;constraint:OnDelete:CASCADE" json:"daily_menus,omitempty"`
}

func (MonthlyPlan) TableName() string { return "monthly_meal_plans" }

// DailyMenu 每日菜单行，对应 daily_meal_menus
// (monthly_plan_id, meal_date, meal_type) 唯一；营养与成本字段只整体重算，不做局部修补
type DailyMenu struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	MonthlyPlanID uint64          `gorm:"not null;uniqueIndex:uk_daily_menu_plan_date_meal"         json:"monthly_plan_id"`
	MealDate      time.Time       `gorm:"type:date;not null;uniqueIndex:uk_daily_menu_plan_date_meal" json:"meal_date"`
	MealType      string          `gorm:"type:varchar(10);not null;uniqueIndex:uk_daily_menu_plan_date_meal" json:"meal_type"` // LUNCH | DINNER
	Rice          *string         `gorm:"type:varchar(255)"                                         json:"rice,omitempty"`
	Soup          *string         `gorm:"type:varchar(255)"                                         json:"soup,omitempty"`
	Main1         *string         `gorm:"type:varchar(255)"                                         json:"main1,omitempty"`
	Main2         *string         `gorm:"type:varchar(255)"                                         json:"main2,omitempty"`
	Side          *string         `gorm:"type:varchar(255)"                                         json:"side,omitempty"`
	Kimchi        *string         `gorm:"type:varchar(255)"                                         json:"kimchi,omitempty"`
	Dessert       *string         `gorm:"type:varchar(255)"                                         json:"dessert,omitempty"`
	Kcal          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"                     json:"kcal"`
	Carb          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"                     json:"carb"`
	Protein       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"                     json:"protein"`
	Fat           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"                     json:"fat"`
	Cost          int             `gorm:"not null;default:0"                                        json:"cost"`
	Comment       string          `gorm:"type:text"                                                 json:"comment,omitempty"`

	RawItems datatypes.JSONSlice[string] `json:"raw_items,omitempty"` // 不带括号的纯菜名，用于还原手动编辑
	BaseModel
}

func (DailyMenu) TableName() string { return "daily_meal_menus" }

// SlotValues 按菜位顺序返回 7 个展示串，空菜位为 ""
func (d *DailyMenu) SlotValues() [menu.SlotCount]string {
	ptrs := d.slotPtrs()
	var out [menu.SlotCount]string
	for i, p := range ptrs {
		if *p != nil {
			out[i] = **p
		}
	}
	return out
}

// SetSlots 整体替换 7 个菜位；空串写为 NULL
func (d *DailyMenu) SetSlots(values [menu.SlotCount]string) {
	for i, p := range d.slotPtrs() {
		if values[i] == "" {
			*p = nil
			continue
		}
		v := values[i]
		*p = &v
	}
}

// Items 返回非空菜位的展示串（保持菜位顺序）
func (d *DailyMenu) Items() []string {
	values := d.SlotValues()
	items := make([]string, 0, menu.SlotCount)
	for _, v := range values {
		if v != "" {
			items = append(items, v)
		}
	}
	return items
}

func (d *DailyMenu) slotPtrs() [menu.SlotCount]**string {
	return [menu.SlotCount]**string{&d.Rice, &d.Soup, &d.Main1, &d.Main2, &d.Side, &d.Kimchi, &d.Dessert}
}
