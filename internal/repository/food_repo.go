package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
)

// FoodRepository 营养目录数据访问接口
type FoodRepository interface {
	// FindByNameIgnoringWhitespace 忽略空白（区分大小写）精确匹配，最多返回一条
	FindByNameIgnoringWhitespace(ctx context.Context, name string) (*model.FoodItem, error)
	Upsert(ctx context.Context, item *model.FoodItem) error
	Count(ctx context.Context) (int64, error)
}

type foodRepo struct {
	db *gorm.DB
}

func NewFoodRepo(db *gorm.DB) FoodRepository {
	return &foodRepo{db: db}
}

func (r *foodRepo) FindByNameIgnoringWhitespace(ctx context.Context, name string) (*model.FoodItem, error) {
	key := menu.NormalizeKey(name)
	if key == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var item model.FoodItem
	err := r.db.WithContext(ctx).
		Where("name_key = ?", key).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *foodRepo) Upsert(ctx context.Context, item *model.FoodItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "kcal", "carb", "protein", "fat", "allergy_info", "updated_at"}),
		}).
		Create(item).Error
}

func (r *foodRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.FoodItem{}).Count(&total).Error
	return total, err
}
