package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
	"nutri-assistant/backend/internal/repository"
)

// ── Mock MonthlyPlanRepository ──

type mockMonthlyPlanRepo struct {
	plans  map[uint64]*model.MonthlyPlan
	nextID uint64
}

func newMockMonthlyPlanRepo() *mockMonthlyPlanRepo {
	return &mockMonthlyPlanRepo{plans: make(map[uint64]*model.MonthlyPlan)}
}

func (m *mockMonthlyPlanRepo) Create(_ context.Context, plan *model.MonthlyPlan) error {
	m.nextID++
	plan.ID = m.nextID
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockMonthlyPlanRepo) GetByID(_ context.Context, id uint64) (*model.MonthlyPlan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMonthlyPlanRepo) GetBySchoolAndMonth(_ context.Context, schoolID uint64, year, month int) (*model.MonthlyPlan, error) {
	for _, p := range m.plans {
		if p.SchoolID == schoolID && p.Year == year && p.Month == month {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMonthlyPlanRepo) Touch(_ context.Context, id uint64) error {
	if p, ok := m.plans[id]; ok {
		p.UpdatedAt = time.Now()
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock DailyMenuRepository ──

type mockDailyMenuRepo struct {
	plans      *mockMonthlyPlanRepo
	menus      map[uint64]*model.DailyMenu
	nextID     uint64
	replaceErr error
}

func newMockDailyMenuRepo(plans *mockMonthlyPlanRepo) *mockDailyMenuRepo {
	return &mockDailyMenuRepo{plans: plans, menus: make(map[uint64]*model.DailyMenu)}
}

func (m *mockDailyMenuRepo) BatchCreate(_ context.Context, menus []model.DailyMenu) error {
	for i := range menus {
		m.nextID++
		menus[i].ID = m.nextID
		menus[i].CreatedAt = time.Now()
		menus[i].UpdatedAt = menus[i].CreatedAt
		row := menus[i]
		m.menus[row.ID] = &row
	}
	return nil
}

func (m *mockDailyMenuRepo) schoolOf(row *model.DailyMenu) uint64 {
	if p, ok := m.plans.plans[row.MonthlyPlanID]; ok {
		return p.SchoolID
	}
	return 0
}

func (m *mockDailyMenuRepo) GetBySchoolDateMeal(_ context.Context, schoolID uint64, date time.Time, mealType string) (*model.DailyMenu, error) {
	day := model.DateOf(date)
	for _, row := range m.menus {
		if m.schoolOf(row) == schoolID && row.MealDate.Equal(day) && row.MealType == mealType {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDailyMenuRepo) ListByPlan(_ context.Context, planID uint64) ([]model.DailyMenu, error) {
	var result []model.DailyMenu
	for _, row := range m.menus {
		if row.MonthlyPlanID == planID {
			result = append(result, *row)
		}
	}
	sortMenus(result)
	return result, nil
}

func (m *mockDailyMenuRepo) ListBySchoolAndDateRange(_ context.Context, schoolID uint64, start, end time.Time) ([]model.DailyMenu, error) {
	from, to := model.DateOf(start), model.DateOf(end)
	var result []model.DailyMenu
	for _, row := range m.menus {
		if m.schoolOf(row) != schoolID || row.MealDate.Before(from) || row.MealDate.After(to) {
			continue
		}
		result = append(result, *row)
	}
	sortMenus(result)
	return result, nil
}

func (m *mockDailyMenuRepo) Replace(_ context.Context, row *model.DailyMenu) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if _, ok := m.menus[row.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *row
	m.menus[row.ID] = &copied
	return nil
}

func (m *mockDailyMenuRepo) DeleteByPlan(_ context.Context, planID uint64) error {
	for id, row := range m.menus {
		if row.MonthlyPlanID == planID {
			delete(m.menus, id)
		}
	}
	return nil
}

func sortMenus(menus []model.DailyMenu) {
	sort.Slice(menus, func(i, j int) bool {
		if !menus[i].MealDate.Equal(menus[j].MealDate) {
			return menus[i].MealDate.Before(menus[j].MealDate)
		}
		return menu.MealType(menus[i].MealType).Order() < menu.MealType(menus[j].MealType).Order()
	})
}

// ── Mock FoodRepository ──

type mockFoodRepo struct {
	items    map[string]*model.FoodItem // key 为 NormalizeKey
	failing  map[string]bool
	findHits int
}

func newMockFoodRepo() *mockFoodRepo {
	return &mockFoodRepo{items: make(map[string]*model.FoodItem), failing: make(map[string]bool)}
}

func (m *mockFoodRepo) add(item *model.FoodItem) {
	item.BeforeSave(nil)
	m.items[item.NameKey] = item
}

func (m *mockFoodRepo) FindByNameIgnoringWhitespace(_ context.Context, name string) (*model.FoodItem, error) {
	m.findHits++
	key := menu.NormalizeKey(name)
	if m.failing[key] {
		return nil, errors.New("connection reset")
	}
	if item, ok := m.items[key]; ok && key != "" {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFoodRepo) Upsert(_ context.Context, item *model.FoodItem) error {
	m.add(item)
	return nil
}

func (m *mockFoodRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

// ── Mock CostRepository ──

type mockCostRepo struct {
	entries map[string]*model.CostEntry
	nextID  uint64
	upserts int
}

func newMockCostRepo() *mockCostRepo {
	return &mockCostRepo{entries: make(map[string]*model.CostEntry)}
}

func (m *mockCostRepo) GetByName(_ context.Context, name string) (*model.CostEntry, error) {
	if e, ok := m.entries[name]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCostRepo) List(ctx context.Context, offset, limit int) ([]model.CostEntry, int64, error) {
	all, _ := m.ListAll(ctx)
	sort.Slice(all, func(i, j int) bool { return all[i].MenuName < all[j].MenuName })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.CostEntry{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCostRepo) ListAll(_ context.Context) ([]model.CostEntry, error) {
	result := make([]model.CostEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCostRepo) BatchUpsert(_ context.Context, entries []model.CostEntry) error {
	m.upserts++
	for _, e := range entries {
		if existing, ok := m.entries[e.MenuName]; ok {
			existing.Price = e.Price
			existing.BaseYear = e.BaseYear
			existing.CurrentYear = e.CurrentYear
			existing.InflationMultiplier = e.InflationMultiplier
			continue
		}
		m.nextID++
		copied := e
		copied.ID = m.nextID
		m.entries[e.MenuName] = &copied
	}
	return nil
}

// ── Mock MenuHistoryRepository ──

type mockHistoryRepo struct {
	histories []model.MenuHistory
	lastQuery repository.HistoryFilter
	offset    int
	limit     int
	createErr error
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(_ context.Context, h *model.MenuHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	h.ID = uint64(len(m.histories) + 1)
	h.CreatedAt = time.Now()
	m.histories = append(m.histories, *h)
	return nil
}

func (m *mockHistoryRepo) List(_ context.Context, filter repository.HistoryFilter, offset, limit int) ([]model.MenuHistory, int64, error) {
	m.lastQuery, m.offset, m.limit = filter, offset, limit

	var matched []model.MenuHistory
	for i := len(m.histories) - 1; i >= 0; i-- {
		h := m.histories[i]
		if h.SchoolID != filter.SchoolID {
			continue
		}
		if filter.ActionType != "" && h.ActionType != filter.ActionType {
			continue
		}
		if filter.HasRange() && (h.MealDate.Before(model.DateOf(*filter.Start)) || h.MealDate.After(model.DateOf(*filter.End))) {
			continue
		}
		matched = append(matched, h)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.MenuHistory{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ── Mock generator.Client ──

type mockGenerator struct {
	monthResp   *generator.MonthResponse
	monthErr    error
	replaceResp *generator.ReplaceResponse
	replaceErr  error

	lastMonthReq   *generator.MonthRequest
	lastReplaceReq *generator.ReplaceRequest
}

func (m *mockGenerator) GenerateMonth(_ context.Context, req *generator.MonthRequest) (*generator.MonthResponse, error) {
	m.lastMonthReq = req
	if m.monthErr != nil {
		return nil, m.monthErr
	}
	return m.monthResp, nil
}

func (m *mockGenerator) ReplaceMeal(_ context.Context, req *generator.ReplaceRequest) (*generator.ReplaceResponse, error) {
	m.lastReplaceReq = req
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	return m.replaceResp, nil
}

// ── Mock JSONCache ──

type mockCache struct {
	data    map[string][]byte
	getErr  error
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// ── 测试装配 ──

type testRepos struct {
	plans   *mockMonthlyPlanRepo
	menus   *mockDailyMenuRepo
	foods   *mockFoodRepo
	costs   *mockCostRepo
	history *mockHistoryRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	plans := newMockMonthlyPlanRepo()
	mocks := &testRepos{
		plans:   plans,
		menus:   newMockDailyMenuRepo(plans),
		foods:   newMockFoodRepo(),
		costs:   newMockCostRepo(),
		history: newMockHistoryRepo(),
	}
	repo := &repository.Repository{
		MonthlyPlan: mocks.plans,
		DailyMenu:   mocks.menus,
		Food:        mocks.foods,
		Cost:        mocks.costs,
		History:     mocks.history,
	}
	return repo, mocks
}

func testConfig() *config.Config {
	return &config.Config{
		Cost: config.CostConfig{
			DefaultPrice: 1000,
			BaseYear:     2023,
			FallbackRate: 0.025,
			RateOverrides: map[string]float64{
				"2023": 0.036,
				"2024": 0.023,
				"2025": 0.021,
			},
		},
		History: config.HistoryConfig{Delimiter: ", ", PageSize: 20},
		Redis:   config.RedisConfig{FoodTTL: time.Hour},
	}
}
