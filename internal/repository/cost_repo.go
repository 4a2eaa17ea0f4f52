package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutri-assistant/backend/internal/model"
)

// CostRepository 单价台账数据访问接口
type CostRepository interface {
	GetByName(ctx context.Context, name string) (*model.CostEntry, error)
	List(ctx context.Context, offset, limit int) ([]model.CostEntry, int64, error)
	ListAll(ctx context.Context) ([]model.CostEntry, error)
	// BatchUpsert 按 menu_name 插入或整体覆盖价格相关字段
	BatchUpsert(ctx context.Context, entries []model.CostEntry) error
}

type costRepo struct {
	db *gorm.DB
}

func NewCostRepo(db *gorm.DB) CostRepository {
	return &costRepo{db: db}
}

func (r *costRepo) GetByName(ctx context.Context, name string) (*model.CostEntry, error) {
	var entry model.CostEntry
	err := r.db.WithContext(ctx).
		Where("menu_name = ?", name).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *costRepo) List(ctx context.Context, offset, limit int) ([]model.CostEntry, int64, error) {
	var entries []model.CostEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CostEntry{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("menu_name ASC").
		Find(&entries).Error
	return entries, total, err
}

func (r *costRepo) ListAll(ctx context.Context) ([]model.CostEntry, error) {
	var entries []model.CostEntry
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *costRepo) BatchUpsert(ctx context.Context, entries []model.CostEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "menu_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "base_year", "current_year", "inflation_multiplier", "updated_at"}),
		}).
		CreateInBatches(&entries, 200).Error
}
