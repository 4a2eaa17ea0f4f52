package model

// CostEntry 菜品单价台账，对应 menu_cost_entries
// price 始终以 current_year 计价；price / inflation_multiplier 还原 base_year 价格
type CostEntry struct {
	ID                  uint64  `gorm:"primaryKey;autoIncrement"               json:"id"`
	MenuName            string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"menu_name"`
	Price               int     `gorm:"not null"                               json:"price"`
	BaseYear            int     `gorm:"not null"                               json:"base_year"`
	CurrentYear         int     `gorm:"not null"                               json:"current_year"`
	InflationMultiplier float64 `gorm:"not null;default:1"                     json:"inflation_multiplier"`
	BaseModel
}

func (CostEntry) TableName() string { return "menu_cost_entries" }
