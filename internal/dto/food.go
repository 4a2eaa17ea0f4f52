package dto

// ── 营养目录模块 DTO ──

// FoodImportError 导入失败的行
type FoodImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// FoodImportResponse 营养目录导入结果
type FoodImportResponse struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Errors   []FoodImportError `json:"errors,omitempty"`
}
