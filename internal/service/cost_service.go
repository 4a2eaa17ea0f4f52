package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/model"
	"nutri-assistant/backend/internal/repository"
	pkgerrors "nutri-assistant/backend/pkg/errors"
)

// ── 单价台账模块业务错误 ──

var (
	ErrLedgerEmpty       = fmt.Errorf("%w: 台账为空，无可重新定价的条目", pkgerrors.ErrLedgerPrecondition)
	ErrCostNameEmpty     = errors.New("菜名不能为空")
	ErrCostPriceNegative = errors.New("单价不能为负数")
)

// ── 通胀系数表 ──

// InflationTable 按年度复利计算价格系数；指定年份使用覆盖费率，其余年份使用统一费率
type InflationTable struct {
	overrides map[int]float64
	fallback  float64
}

// NewInflationTable 创建通胀系数表
func NewInflationTable(overrides map[int]float64, fallback float64) *InflationTable {
	copied := make(map[int]float64, len(overrides))
	for y, r := range overrides {
		copied[y] = r
	}
	return &InflationTable{overrides: copied, fallback: fallback}
}

// Rate 返回某一年的通胀率
func (t *InflationTable) Rate(year int) float64 {
	if r, ok := t.overrides[year]; ok {
		return r
	}
	return t.fallback
}

// Multiplier 逐年累乘 [from, to) 区间内的 (1+rate)；to <= from 时为 1.0
func (t *InflationTable) Multiplier(from, to int) float64 {
	m := 1.0
	for y := from; y < to; y++ {
		m *= 1 + t.Rate(y)
	}
	return m
}

// roundHalfUp 四舍五入到整数（价格非负）
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// CostService 单价台账业务接口
type CostService interface {
	// Lookup 精确匹配菜名；不存在时按默认单价合成条目（不落库）
	Lookup(ctx context.Context, name string) (*dto.CostEntryResponse, error)
	// BulkUpsert 以 targetYear 的统一系数批量写入，未出现的条目保持不变
	BulkUpsert(ctx context.Context, req *dto.BulkUpsertCostRequest) (*dto.BulkUpsertCostResponse, error)
	// RepriceForYear 全台账按新年份重新定价
	RepriceForYear(ctx context.Context, newYear int) (*dto.RepriceResponse, error)
	InflationMultiplier(fromYear, toYear int) float64
	List(ctx context.Context, req *dto.CostListRequest) ([]dto.CostEntryResponse, int64, error)
	// UnitCosts 生成请求所需的单价列表
	UnitCosts(ctx context.Context) ([]generator.UnitCost, error)
	// SumPrices 逐项查价求和，未登记的菜品按默认单价计
	SumPrices(ctx context.Context, names []string) (int, error)
}

type costService struct {
	cfg       *config.CostConfig
	repo      *repository.Repository
	inflation *InflationTable
	now       func() time.Time
	logger    *zap.Logger
}

// NewCostService 创建 CostService 实例
func NewCostService(cfg *config.CostConfig, repo *repository.Repository, logger *zap.Logger) CostService {
	return &costService{
		cfg:       cfg,
		repo:      repo,
		inflation: NewInflationTable(cfg.YearRates(), cfg.FallbackRate),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *costService) InflationMultiplier(fromYear, toYear int) float64 {
	return s.inflation.Multiplier(fromYear, toYear)
}

// ────────────────────── Lookup ──────────────────────

func (s *costService) Lookup(ctx context.Context, name string) (*dto.CostEntryResponse, error) {
	entry, persisted, err := s.lookupEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := toCostEntryResponse(entry)
	resp.IsDefault = !persisted
	return &resp, nil
}

func (s *costService) lookupEntry(ctx context.Context, name string) (*model.CostEntry, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrCostNameEmpty
	}

	entry, err := s.repo.Cost.GetByName(ctx, name)
	if err == nil {
		return entry, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询单价失败", zap.String("menu_name", name), zap.Error(err))
		return nil, false, err
	}

	return &model.CostEntry{
		MenuName:            name,
		Price:               s.cfg.DefaultPrice,
		BaseYear:            s.cfg.BaseYear,
		CurrentYear:         s.now().Year(),
		InflationMultiplier: 1.0,
	}, false, nil
}

func (s *costService) SumPrices(ctx context.Context, names []string) (int, error) {
	total := 0
	for _, name := range names {
		entry, _, err := s.lookupEntry(ctx, name)
		if err != nil {
			if errors.Is(err, ErrCostNameEmpty) {
				continue
			}
			return 0, err
		}
		total += entry.Price
	}
	return total, nil
}

// ────────────────────── BulkUpsert ──────────────────────

func (s *costService) BulkUpsert(ctx context.Context, req *dto.BulkUpsertCostRequest) (*dto.BulkUpsertCostResponse, error) {
	multiplier := s.inflation.Multiplier(s.cfg.BaseYear, req.TargetYear)
	resp := &dto.BulkUpsertCostResponse{TargetYear: req.TargetYear, Multiplier: multiplier}
	if len(req.Prices) == 0 {
		return resp, nil
	}

	entries := make([]model.CostEntry, 0, len(req.Prices))
	for name, price := range req.Prices {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrCostNameEmpty
		}
		if price < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCostPriceNegative, name)
		}
		entries = append(entries, model.CostEntry{
			MenuName:            name,
			Price:               price,
			BaseYear:            s.cfg.BaseYear,
			CurrentYear:         req.TargetYear,
			InflationMultiplier: multiplier,
		})
	}

	if err := s.repo.Cost.BatchUpsert(ctx, entries); err != nil {
		s.logger.Error("批量写入单价失败", zap.Int("count", len(entries)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量写入单价",
		zap.Int("count", len(entries)),
		zap.Int("target_year", req.TargetYear),
		zap.Float64("multiplier", multiplier),
	)
	resp.Upserted = len(entries)
	return resp, nil
}

// ────────────────────── RepriceForYear ──────────────────────

func (s *costService) RepriceForYear(ctx context.Context, newYear int) (*dto.RepriceResponse, error) {
	var updated int
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		entries, err := txRepo.Cost.ListAll(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return ErrLedgerEmpty
		}

		repriced := make([]model.CostEntry, 0, len(entries))
		for _, e := range entries {
			current := e.InflationMultiplier
			if current <= 0 {
				current = 1.0
			}
			basePrice := float64(e.Price) / current
			multiplier := s.inflation.Multiplier(e.BaseYear, newYear)
			repriced = append(repriced, model.CostEntry{
				MenuName:            e.MenuName,
				Price:               roundHalfUp(basePrice * multiplier),
				BaseYear:            e.BaseYear,
				CurrentYear:         newYear,
				InflationMultiplier: multiplier,
			})
		}

		if err := txRepo.Cost.BatchUpsert(ctx, repriced); err != nil {
			return err
		}
		updated = len(repriced)
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrLedgerEmpty) {
			s.logger.Error("重新定价失败", zap.Int("year", newYear), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("台账重新定价完成", zap.Int("year", newYear), zap.Int("updated", updated))
	return &dto.RepriceResponse{Year: newYear, Updated: updated}, nil
}

// ────────────────────── List ──────────────────────

func (s *costService) List(ctx context.Context, req *dto.CostListRequest) ([]dto.CostEntryResponse, int64, error) {
	size := req.GetSize(defaultPageSize)
	entries, total, err := s.repo.Cost.List(ctx, req.GetPage()*size, size)
	if err != nil {
		s.logger.Error("查询单价台账失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CostEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toCostEntryResponse(&entries[i]))
	}
	return result, total, nil
}

func (s *costService) UnitCosts(ctx context.Context) ([]generator.UnitCost, error) {
	entries, err := s.repo.Cost.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	costs := make([]generator.UnitCost, 0, len(entries))
	for _, e := range entries {
		costs = append(costs, generator.UnitCost{Name: e.MenuName, Price: e.Price})
	}
	return costs, nil
}

// ── 辅助函数 ──

func toCostEntryResponse(e *model.CostEntry) dto.CostEntryResponse {
	multiplier := e.InflationMultiplier
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return dto.CostEntryResponse{
		MenuName:            e.MenuName,
		Price:               e.Price,
		BaseYear:            e.BaseYear,
		CurrentYear:         e.CurrentYear,
		InflationMultiplier: e.InflationMultiplier,
		BasePrice:           float64(e.Price) / multiplier,
	}
}
