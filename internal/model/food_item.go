package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nutri-assistant/backend/internal/menu"
)

// FoodItem 营养目录，对应 food_items
// name_key 为去除空白后的菜名，写入时计算，用于不区分空白的精确匹配
type FoodItem struct {
	ID          uint64              `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string              `gorm:"type:varchar(255);not null"        json:"name"`
	NameKey     string              `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	Kcal        *int                `json:"kcal,omitempty"`
	Carb        decimal.NullDecimal `gorm:"type:decimal(10,2)"                json:"carb"`
	Protein     decimal.NullDecimal `gorm:"type:decimal(10,2)"                json:"protein"`
	Fat         decimal.NullDecimal `gorm:"type:decimal(10,2)"                json:"fat"`
	AllergyInfo string              `gorm:"type:varchar(100)"                 json:"allergy_info,omitempty"` // 逗号拼接的过敏原编号
	BaseModel
}

func (FoodItem) TableName() string { return "food_items" }

// BeforeSave 写入前规范化匹配键
func (f *FoodItem) BeforeSave(_ *gorm.DB) error {
	f.NameKey = menu.NormalizeKey(f.Name)
	return nil
}

// AllergenCodes 解析过敏原编号
func (f *FoodItem) AllergenCodes() []int {
	return menu.ParseAllergyInfo(f.AllergyInfo)
}
