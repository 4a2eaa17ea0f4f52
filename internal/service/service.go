package service

import (
	"go.uber.org/zap"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/repository"
)

// defaultPageSize 未指定每页数量时的默认值
const defaultPageSize = 20

// Service 所有 Service 的聚合入口
type Service struct {
	MealPlan MealPlanService
	Cost     CostService
	History  HistoryService
	Food     FoodService
	Export   ExportService
}

// NewService 创建 Service 聚合；cache 为 nil 时营养目录直接查库
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	gen generator.Client,
	cache JSONCache,
	logger *zap.Logger,
) *Service {
	catalog := NewCachedCatalog(repo.Food, cache, cfg.Redis.FoodTTL, logger)
	cost := NewCostService(&cfg.Cost, repo, logger)

	return &Service{
		MealPlan: NewMealPlanService(cfg, repo, gen, NewNutritionAggregator(catalog, logger), cost, logger),
		Cost:     cost,
		History:  NewHistoryService(&cfg.History, repo, logger),
		Food:     NewFoodService(repo, cache, logger),
		Export:   NewExportService(repo, logger),
	}
}
