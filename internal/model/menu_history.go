package model

import "time"

// MenuHistory 菜单修改历史，对应 menu_histories（只追加的审计日志）
type MenuHistory struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement"                  json:"id"`
	SchoolID      uint64     `gorm:"not null;index:idx_menu_history_school_date" json:"school_id"`
	MealDate      time.Time  `gorm:"type:date;not null;index:idx_menu_history_school_date" json:"meal_date"`
	MealType      string     `gorm:"type:varchar(10);not null"                 json:"meal_type"`
	ActionType    string     `gorm:"type:varchar(20);not null"                 json:"action_type"` // AI_AUTO_REPLACE | MANUAL_UPDATE
	OldItems      string     `gorm:"type:text"                                 json:"old_items"`
	NewItems      string     `gorm:"type:text"                                 json:"new_items"`
	Reason        string     `gorm:"type:text"                                 json:"reason,omitempty"`
	MenuCreatedAt *time.Time `json:"menu_created_at,omitempty"` // 被修改菜单行的原始创建时间
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"created_at"`
}

func (MenuHistory) TableName() string { return "menu_histories" }
