package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
	"nutri-assistant/backend/internal/repository"
)

// ── 营养目录模块业务错误 ──

var (
	ErrImportInvalidFile = errors.New("无法解析 Excel 文件")
	ErrImportNoHeader    = errors.New("Excel 缺少 식품명 表头")
	ErrImportEmpty       = errors.New("Excel 中没有可导入的数据行")
)

// 营养目录 Excel 表头
const (
	colFoodName = "식품명"
	colKcal     = "에너지(kcal)"
	colCarb     = "탄수화물(g)"
	colProtein  = "단백질(g)"
	colFat      = "지방(g)"
	colAllergy  = "알레르기"
)

// FoodService 营养目录维护接口
type FoodService interface {
	// ImportFoods 读取 Excel 第一个工作表并按 name_key 插入或覆盖
	ImportFoods(ctx context.Context, r io.Reader) (*dto.FoodImportResponse, error)
}

type foodService struct {
	repo   *repository.Repository
	cache  JSONCache
	logger *zap.Logger
}

// NewFoodService 创建 FoodService 实例；cache 可为 nil
func NewFoodService(repo *repository.Repository, cache JSONCache, logger *zap.Logger) FoodService {
	return &foodService{repo: repo, cache: cache, logger: logger}
}

func (s *foodService) ImportFoods(ctx context.Context, r io.Reader) (*dto.FoodImportResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		s.logger.Warn("打开营养目录 Excel 失败", zap.Error(err))
		return nil, ErrImportInvalidFile
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols[colFoodName]; !ok {
		return nil, ErrImportNoHeader
	}

	result := &dto.FoodImportResponse{}
	items := make([]*model.FoodItem, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // Excel 行号（含表头）
		item, err := parseFoodRow(row, cols)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.FoodImportError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if item == nil {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 && result.Failed == 0 {
		return nil, ErrImportEmpty
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		for _, item := range items {
			if err := txRepo.Food.Upsert(ctx, item); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", item.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导入营养目录失败", zap.Int("rows", len(items)), zap.Error(err))
		return nil, err
	}
	result.Imported = len(items)

	s.invalidateCache(ctx, items)
	s.logger.Info("营养目录导入完成", zap.Int("imported", result.Imported), zap.Int("failed", result.Failed))
	return result, nil
}

// invalidateCache 清除已导入菜品的缓存（包括此前缓存的未命中）
func (s *foodService) invalidateCache(ctx context.Context, items []*model.FoodItem) {
	if s.cache == nil || len(items) == 0 {
		return
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, foodCacheKey(item.Name))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("清除营养目录缓存失败", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

// parseFoodRow 解析一行；整行为空时返回 nil, nil
func parseFoodRow(row []string, cols map[string]int) (*model.FoodItem, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := get(colFoodName)
	if name == "" {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				return nil, errors.New("식품명 为空")
			}
		}
		return nil, nil
	}

	item := &model.FoodItem{Name: name}

	if v := get(colKcal); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%s 不是合法数值: %q", colKcal, v)
		}
		kcal := int(math.Round(f))
		item.Kcal = &kcal
	}

	var err error
	if item.Carb, err = parseNullDecimal(colCarb, get(colCarb)); err != nil {
		return nil, err
	}
	if item.Protein, err = parseNullDecimal(colProtein, get(colProtein)); err != nil {
		return nil, err
	}
	if item.Fat, err = parseNullDecimal(colFat, get(colFat)); err != nil {
		return nil, err
	}

	if v := get(colAllergy); v != "" {
		codes := menu.SortedUnique(menu.ParseAllergyInfo(v))
		parts := make([]string, 0, len(codes))
		for _, c := range codes {
			parts = append(parts, strconv.Itoa(c))
		}
		item.AllergyInfo = strings.Join(parts, ",")
	}
	return item, nil
}

func parseNullDecimal(col, v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("%s 不是合法数值: %q", col, v)
	}
	return decimal.NewNullDecimal(d), nil
}
