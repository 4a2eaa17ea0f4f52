package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
)

const foodCachePrefix = "food:"

// NutritionCatalog 营养目录只读查询：忽略空白、区分大小写的精确匹配，最多一条
// 未命中时返回 gorm.ErrRecordNotFound
type NutritionCatalog interface {
	FindByNameIgnoringWhitespace(ctx context.Context, name string) (*model.FoodItem, error)
}

// JSONCache 营养目录缓存所需的最小 KV 能力（由 pkg/redis.Client 实现）
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// cachedFood 缓存值；Missing 表示目录中确认不存在
type cachedFood struct {
	Missing bool            `json:"missing,omitempty"`
	Item    *model.FoodItem `json:"item,omitempty"`
}

type cachedCatalog struct {
	source NutritionCatalog
	cache  JSONCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog 为营养目录包装读穿缓存；cache 为 nil 时直接返回 source
func NewCachedCatalog(source NutritionCatalog, cache JSONCache, ttl time.Duration, logger *zap.Logger) NutritionCatalog {
	if cache == nil {
		return source
	}
	return &cachedCatalog{source: source, cache: cache, ttl: ttl, logger: logger}
}

func foodCacheKey(name string) string {
	return foodCachePrefix + menu.NormalizeKey(name)
}

func (c *cachedCatalog) FindByNameIgnoringWhitespace(ctx context.Context, name string) (*model.FoodItem, error) {
	key := foodCacheKey(name)
	if key == foodCachePrefix {
		return nil, gorm.ErrRecordNotFound
	}

	var hit cachedFood
	found, err := c.cache.GetJSON(ctx, key, &hit)
	if err != nil {
		// 缓存不可用时降级为直接查库
		c.logger.Warn("营养目录缓存读取失败", zap.String("key", key), zap.Error(err))
	} else if found {
		if hit.Missing || hit.Item == nil {
			return nil, gorm.ErrRecordNotFound
		}
		return hit.Item, nil
	}

	item, err := c.source.FindByNameIgnoringWhitespace(ctx, name)
	switch {
	case err == nil:
		c.store(ctx, key, cachedFood{Item: item})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.store(ctx, key, cachedFood{Missing: true})
	}
	return item, err
}

func (c *cachedCatalog) store(ctx context.Context, key string, v cachedFood) {
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("营养目录缓存写入失败", zap.String("key", key), zap.Error(err))
	}
}
