package dto

// ── 修改历史模块 DTO ──

// HistoryQueryRequest 修改历史查询；start/end 需同时提供
type HistoryQueryRequest struct {
	SchoolID   uint64 `form:"school_id"   binding:"required"`
	Start      string `form:"start"`
	End        string `form:"end"`
	ActionType string `form:"action_type" binding:"omitempty,oneof=AI_AUTO_REPLACE MANUAL_UPDATE"`
	PaginationRequest
}

// HistoryResponse 修改历史条目；旧/新菜品已按外层分隔符拆分
type HistoryResponse struct {
	ID            uint64   `json:"id"`
	SchoolID      uint64   `json:"school_id"`
	MealDate      string   `json:"meal_date"`
	MealType      string   `json:"meal_type"`
	ActionType    string   `json:"action_type"`
	OldItems      []string `json:"old_items"`
	NewItems      []string `json:"new_items"`
	Reason        string   `json:"reason,omitempty"`
	MenuCreatedAt string   `json:"menu_created_at,omitempty"`
	CreatedAt     string   `json:"created_at"`
}
