package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数（页码从 0 开始）
type PaginationRequest struct {
	Page int `form:"page" binding:"omitempty,min=0"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page
}

// GetSize 获取每页数量；未指定时使用 defaultSize
func (p *PaginationRequest) GetSize(defaultSize int) int {
	if p.Size <= 0 {
		return defaultSize
	}
	if p.Size > 100 {
		return 100
	}
	return p.Size
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset(defaultSize int) int {
	return p.GetPage() * p.GetSize(defaultSize)
}
