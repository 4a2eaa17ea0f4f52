package dto

// ── 单价台账模块 DTO ──

// BulkUpsertCostRequest 批量写入单价；价格以 target_year 计价
type BulkUpsertCostRequest struct {
	Prices     map[string]int `json:"prices"      binding:"required"`
	TargetYear int            `json:"target_year" binding:"required,min=2000,max=2100"`
}

// RepriceRequest 全台账重新定价请求
type RepriceRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2100"`
}

// CostListRequest 台账分页查询
type CostListRequest struct {
	PaginationRequest
}

// CostEntryResponse 单价条目
type CostEntryResponse struct {
	MenuName            string  `json:"menu_name"`
	Price               int     `json:"price"`
	BaseYear            int     `json:"base_year"`
	CurrentYear         int     `json:"current_year"`
	InflationMultiplier float64 `json:"inflation_multiplier"`
	BasePrice           float64 `json:"base_price"`
	IsDefault           bool    `json:"is_default"` // 台账中不存在，按默认单价合成
}

// BulkUpsertCostResponse 批量写入结果
type BulkUpsertCostResponse struct {
	Upserted   int     `json:"upserted"`
	TargetYear int     `json:"target_year"`
	Multiplier float64 `json:"multiplier"`
}

// RepriceResponse 重新定价结果
type RepriceResponse struct {
	Year    int `json:"year"`
	Updated int `json:"updated"`
}
