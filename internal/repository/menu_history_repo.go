package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nutri-assistant/backend/internal/model"
)

// HistoryFilter 修改历史查询条件；Start/End 同时非空时按日期区间过滤
type HistoryFilter struct {
	SchoolID   uint64
	Start      *time.Time
	End        *time.Time
	ActionType string
}

// HasRange 是否带日期区间
func (f HistoryFilter) HasRange() bool {
	return f.Start != nil && f.End != nil
}

// MenuHistoryRepository 菜单修改历史数据访问接口（只追加）
type MenuHistoryRepository interface {
	Create(ctx context.Context, history *model.MenuHistory) error
	List(ctx context.Context, filter HistoryFilter, offset, limit int) ([]model.MenuHistory, int64, error)
}

type menuHistoryRepo struct {
	db *gorm.DB
}

func NewMenuHistoryRepo(db *gorm.DB) MenuHistoryRepository {
	return &menuHistoryRepo{db: db}
}

func (r *menuHistoryRepo) Create(ctx context.Context, history *model.MenuHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// List 四种检索方式（区间+类型、仅区间、仅类型、无过滤）共享同一排序（id 降序）与分页语义
func (r *menuHistoryRepo) List(ctx context.Context, filter HistoryFilter, offset, limit int) ([]model.MenuHistory, int64, error) {
	var histories []model.MenuHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.MenuHistory{}).
		Where("school_id = ?", filter.SchoolID)

	switch {
	case filter.HasRange() && filter.ActionType != "":
		db = db.Where("meal_date BETWEEN ? AND ? AND action_type = ?",
			model.DateOf(*filter.Start), model.DateOf(*filter.End), filter.ActionType)
	case filter.HasRange():
		db = db.Where("meal_date BETWEEN ? AND ?",
			model.DateOf(*filter.Start), model.DateOf(*filter.End))
	case filter.ActionType != "":
		db = db.Where("action_type = ?", filter.ActionType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("id DESC").
		Find(&histories).Error
	return histories, total, err
}
