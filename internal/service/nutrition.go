package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
)

// NutritionTotals 一餐营养合计
type NutritionTotals struct {
	Kcal    decimal.Decimal
	Carb    decimal.Decimal
	Protein decimal.Decimal
	Fat     decimal.Decimal
}

// Add 累加一个营养目录条目；缺失的数值按 0 计
func (t *NutritionTotals) Add(item *model.FoodItem) {
	if item.Kcal != nil {
		t.Kcal = t.Kcal.Add(decimal.NewFromInt(int64(*item.Kcal)))
	}
	if item.Carb.Valid {
		t.Carb = t.Carb.Add(item.Carb.Decimal)
	}
	if item.Protein.Valid {
		t.Protein = t.Protein.Add(item.Protein.Decimal)
	}
	if item.Fat.Valid {
		t.Fat = t.Fat.Add(item.Fat.Decimal)
	}
}

// EnrichedMeal 营养补全结果
type EnrichedMeal struct {
	Slots     [menu.SlotCount]string // 可直接落库的展示串
	Totals    NutritionTotals
	PureNames []string // 去除注释后的菜名，用于 raw_items 与历史
	Unmatched []string // 目录未命中的菜名
}

// NutritionAggregator 将自由输入的菜名与营养目录对照并汇总营养
type NutritionAggregator struct {
	catalog NutritionCatalog
	logger  *zap.Logger
}

// NewNutritionAggregator 创建 NutritionAggregator
func NewNutritionAggregator(catalog NutritionCatalog, logger *zap.Logger) *NutritionAggregator {
	return &NutritionAggregator{catalog: catalog, logger: logger}
}

// Aggregate 逐项查目录并汇总营养。
// 未命中或查询失败的菜品以纯菜名保存且不计入营养，不影响其余菜品；
// 超过 7 项时只保留前 7 项。
func (a *NutritionAggregator) Aggregate(ctx context.Context, names []string) *EnrichedMeal {
	result := &EnrichedMeal{PureNames: make([]string, 0, menu.SlotCount)}

	for _, raw := range names {
		if len(result.PureNames) == menu.SlotCount {
			break
		}
		pure := strings.TrimSpace(menu.StripAnnotation(raw))
		if pure == "" {
			continue
		}

		idx := len(result.PureNames)
		result.PureNames = append(result.PureNames, pure)

		display, item := a.Annotate(ctx, pure)
		result.Slots[idx] = display
		if item == nil {
			result.Unmatched = append(result.Unmatched, pure)
			continue
		}
		result.Totals.Add(item)
	}
	return result
}

// Annotate 按目录中的过敏原重新编码纯菜名；未命中时返回纯菜名与 nil
func (a *NutritionAggregator) Annotate(ctx context.Context, pure string) (string, *model.FoodItem) {
	item, err := a.catalog.FindByNameIgnoringWhitespace(ctx, pure)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.logger.Warn("营养目录未收录该菜品", zap.String("name", pure))
		} else {
			a.logger.Warn("营养目录查询失败，按未命中处理", zap.String("name", pure), zap.Error(err))
		}
		return pure, nil
	}
	return menu.Encode(pure, menu.SortedUnique(item.AllergenCodes())), item
}
