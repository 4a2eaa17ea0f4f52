package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nutri-assistant/backend/internal/model"
)

// MonthlyPlanRepository 月度计划数据访问接口
type MonthlyPlanRepository interface {
	Create(ctx context.Context, plan *model.MonthlyPlan) error
	GetByID(ctx context.Context, id uint64) (*model.MonthlyPlan, error)
	GetBySchoolAndMonth(ctx context.Context, schoolID uint64, year, month int) (*model.MonthlyPlan, error)
	Touch(ctx context.Context, id uint64) error
}

// DailyMenuRepository 每日菜单数据访问接口
type DailyMenuRepository interface {
	BatchCreate(ctx context.Context, menus []model.DailyMenu) error
	GetBySchoolDateMeal(ctx context.Context, schoolID uint64, date time.Time, mealType string) (*model.DailyMenu, error)
	ListByPlan(ctx context.Context, planID uint64) ([]model.DailyMenu, error)
	ListBySchoolAndDateRange(ctx context.Context, schoolID uint64, start, end time.Time) ([]model.DailyMenu, error)
	Replace(ctx context.Context, menu *model.DailyMenu) error
	DeleteByPlan(ctx context.Context, planID uint64) error
}

// ── MonthlyPlan Repository 实现 ──

type monthlyPlanRepo struct {
	db *gorm.DB
}

func NewMonthlyPlanRepo(db *gorm.DB) MonthlyPlanRepository {
	return &monthlyPlanRepo{db: db}
}

func (r *monthlyPlanRepo) Create(ctx context.Context, plan *model.MonthlyPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *monthlyPlanRepo) GetByID(ctx context.Context, id uint64) (*model.MonthlyPlan, error) {
	var plan model.MonthlyPlan
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *monthlyPlanRepo) GetBySchoolAndMonth(ctx context.Context, schoolID uint64, year, month int) (*model.MonthlyPlan, error) {
	var plan model.MonthlyPlan
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND year = ? AND month = ?", schoolID, year, month).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *monthlyPlanRepo) Touch(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.MonthlyPlan{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// ── DailyMenu Repository 实现 ──

type dailyMenuRepo struct {
	db *gorm.DB
}

func NewDailyMenuRepo(db *gorm.DB) DailyMenuRepository {
	return &dailyMenuRepo{db: db}
}

func (r *dailyMenuRepo) BatchCreate(ctx context.Context, menus []model.DailyMenu) error {
	if len(menus) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&menus).Error
}

func (r *dailyMenuRepo) GetBySchoolDateMeal(ctx context.Context, schoolID uint64, date time.Time, mealType string) (*model.DailyMenu, error) {
	var menu model.DailyMenu
	err := r.db.WithContext(ctx).
		Joins("JOIN monthly_meal_plans ON monthly_meal_plans.id = daily_meal_menus.monthly_plan_id").
		Where("monthly_meal_plans.school_id = ? AND daily_meal_menus.meal_date = ? AND daily_meal_menus.meal_type = ?",
			schoolID, model.DateOf(date), mealType).
		First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *dailyMenuRepo) ListByPlan(ctx context.Context, planID uint64) ([]model.DailyMenu, error) {
	var menus []model.DailyMenu
	err := r.db.WithContext(ctx).
		Where("monthly_plan_id = ?", planID).
		Order("meal_date ASC, meal_type DESC"). // 同日 LUNCH 在 DINNER 之前
		Find(&menus).Error
	return menus, err
}

func (r *dailyMenuRepo) ListBySchoolAndDateRange(ctx context.Context, schoolID uint64, start, end time.Time) ([]model.DailyMenu, error) {
	var menus []model.DailyMenu
	err := r.db.WithContext(ctx).
		Joins("JOIN monthly_meal_plans ON monthly_meal_plans.id = daily_meal_menus.monthly_plan_id").
		Where("monthly_meal_plans.school_id = ? AND daily_meal_menus.meal_date BETWEEN ? AND ?",
			schoolID, model.DateOf(start), model.DateOf(end)).
		Order("daily_meal_menus.meal_date ASC, daily_meal_menus.meal_type DESC").
		Find(&menus).Error
	return menus, err
}

// Replace 整体覆盖菜位、营养、成本、备注与原始菜名（不做局部更新）
func (r *dailyMenuRepo) Replace(ctx context.Context, menu *model.DailyMenu) error {
	result := r.db.WithContext(ctx).
		Model(&model.DailyMenu{}).
		Where("id = ?", menu.ID).
		Updates(map[string]interface{}{
			"rice":       menu.Rice,
			"soup":       menu.Soup,
			"main1":      menu.Main1,
			"main2":      menu.Main2,
			"side":       menu.Side,
			"kimchi":     menu.Kimchi,
			"dessert":    menu.Dessert,
			"kcal":       menu.Kcal,
			"carb":       menu.Carb,
			"protein":    menu.Protein,
			"fat":        menu.Fat,
			"cost":       menu.Cost,
			"comment":    menu.Comment,
			"raw_items":  menu.RawItems,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dailyMenuRepo) DeleteByPlan(ctx context.Context, planID uint64) error {
	return r.db.WithContext(ctx).
		Where("monthly_plan_id = ?", planID).
		Delete(&model.DailyMenu{}).Error
}
