package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
	"nutri-assistant/backend/internal/repository"
	pkgerrors "nutri-assistant/backend/pkg/errors"
)

// ── 菜单计划模块业务错误 ──

var (
	ErrMealPlanNotFound     = fmt.Errorf("%w: 月度菜单不存在", pkgerrors.ErrNotFound)
	ErrDailyMenuNotFound    = fmt.Errorf("%w: 菜单行不存在", pkgerrors.ErrNotFound)
	ErrInvalidMealType      = errors.New("餐次必须为 LUNCH 或 DINNER")
	ErrEmptyItems           = errors.New("菜品列表为空")
	ErrGeneratorEmpty       = fmt.Errorf("%w: 生成服务未返回任何菜单", pkgerrors.ErrExternalService)
	ErrGeneratedMealInvalid = fmt.Errorf("%w: 生成服务返回的菜单不合法", pkgerrors.ErrExternalService)
)

// weekDays 周视图覆盖的天数
const weekDays = 7

// MenuMutation 对单个菜单行的整体替换。
// AI 替换与手动编辑共用此结构，ActionType 必填，保证每次修改都写入历史。
type MenuMutation struct {
	ActionType menu.ActionType
	Reason     string
	Slots      [menu.SlotCount]string
	PureNames  []string
	Totals     NutritionTotals
	Cost       int
	Comment    string
}

// MealPlanService 菜单计划编排接口
type MealPlanService interface {
	// Generate 调用外部生成服务并整体替换该校该月的全部菜单行（不写历史）
	Generate(ctx context.Context, req *dto.GenerateMealPlanRequest) (*dto.MonthlyPlanResponse, error)
	// AIReplace 由外部生成服务替换单餐
	AIReplace(ctx context.Context, req *dto.AIReplaceRequest) (*dto.MenuMutationResponse, error)
	// ManualUpdate 按用户输入的菜名重算营养与成本后替换单餐
	ManualUpdate(ctx context.Context, req *dto.ManualUpdateRequest) (*dto.MenuMutationResponse, error)
	GetDaily(ctx context.Context, schoolID uint64, date string) (*dto.DailyViewResponse, error)
	GetWeekly(ctx context.Context, schoolID uint64, start string) (*dto.WeeklyViewResponse, error)
	GetMonthly(ctx context.Context, schoolID uint64, year, month int) (*dto.MonthlyPlanResponse, error)
}

type mealPlanService struct {
	cfg       *config.Config
	repo      *repository.Repository
	gen       generator.Client
	nutrition *NutritionAggregator
	cost      CostService
	logger    *zap.Logger
}

// NewMealPlanService 创建 MealPlanService 实例
func NewMealPlanService(
	cfg *config.Config,
	repo *repository.Repository,
	gen generator.Client,
	nutrition *NutritionAggregator,
	cost CostService,
	logger *zap.Logger,
) MealPlanService {
	return &mealPlanService{
		cfg:       cfg,
		repo:      repo,
		gen:       gen,
		nutrition: nutrition,
		cost:      cost,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Generate: 生成月度菜单
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 收集上月报告与单价列表作为生成上下文（失败时仅告警）
//  2. 在事务外同步调用生成服务；失败时本地不做任何写入
//  3. 校验并转换返回的菜单
//  4. 事务内查找或创建月度计划，删除旧菜单行后批量写入新行

func (s *mealPlanService) Generate(ctx context.Context, req *dto.GenerateMealPlanRequest) (*dto.MonthlyPlanResponse, error) {
	mealTypes := req.MealTypes
	if len(mealTypes) == 0 {
		mealTypes = []string{string(menu.MealLunch)}
	}
	for _, mt := range mealTypes {
		if !menu.MealType(mt).Valid() {
			return nil, ErrInvalidMealType
		}
	}

	genReq := &generator.MonthRequest{
		SchoolID:       req.SchoolID,
		Year:           req.Year,
		Month:          req.Month,
		MealTypes:      mealTypes,
		TargetCost:     req.TargetCost,
		PreviousReport: s.previousReport(ctx, req.SchoolID, req.Year, req.Month),
	}
	if costs, err := s.cost.UnitCosts(ctx); err != nil {
		s.logger.Warn("读取单价台账失败，生成请求不携带单价", zap.Error(err))
	} else {
		genReq.UnitCosts = costs
	}

	resp, err := s.gen.GenerateMonth(ctx, genReq)
	if err != nil {
		s.logger.Error("生成月度菜单失败",
			zap.Uint64("school_id", req.SchoolID),
			zap.Int("year", req.Year),
			zap.Int("month", req.Month),
			zap.Error(err),
		)
		return nil, fmt.Errorf("调用生成服务: %w", err)
	}
	if len(resp.Meals) == 0 {
		return nil, ErrGeneratorEmpty
	}

	menus, err := s.convertGenerated(req.Year, req.Month, resp.Meals)
	if err != nil {
		return nil, err
	}

	var plan *model.MonthlyPlan
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		existing, err := txRepo.MonthlyPlan.GetBySchoolAndMonth(ctx, req.SchoolID, req.Year, req.Month)
		switch {
		case err == nil:
			plan = existing
			if err := txRepo.DailyMenu.DeleteByPlan(ctx, plan.ID); err != nil {
				return err
			}
			if err := txRepo.MonthlyPlan.Touch(ctx, plan.ID); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			plan = &model.MonthlyPlan{SchoolID: req.SchoolID, Year: req.Year, Month: req.Month}
			if err := txRepo.MonthlyPlan.Create(ctx, plan); err != nil {
				return err
			}
		default:
			return err
		}

		for i := range menus {
			menus[i].MonthlyPlanID = plan.ID
		}
		return txRepo.DailyMenu.BatchCreate(ctx, menus)
	})
	if err != nil {
		s.logger.Error("保存月度菜单失败",
			zap.Uint64("school_id", req.SchoolID),
			zap.Int("year", req.Year),
			zap.Int("month", req.Month),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("月度菜单已生成",
		zap.Uint64("plan_id", plan.ID),
		zap.Uint64("school_id", req.SchoolID),
		zap.Int("meals", len(menus)),
	)
	return s.toMonthlyPlanResponse(plan, menus), nil
}

// convertGenerated 校验生成结果并转换为按日期、餐次排序的菜单行；同一 (日期, 餐次) 重复时保留最后一条
func (s *mealPlanService) convertGenerated(year, month int, meals []generator.GeneratedMeal) ([]model.DailyMenu, error) {
	type key struct {
		date     time.Time
		mealType string
	}
	index := make(map[key]int, len(meals))
	menus := make([]model.DailyMenu, 0, len(meals))

	for i := range meals {
		meal := &meals[i]
		date, err := time.Parse(dateLayout, meal.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: 日期 %q", ErrGeneratedMealInvalid, meal.Date)
		}
		if date.Year() != year || int(date.Month()) != month {
			return nil, fmt.Errorf("%w: 日期 %s 不在 %d-%02d", ErrGeneratedMealInvalid, meal.Date, year, month)
		}
		if !menu.MealType(meal.MealType).Valid() {
			return nil, fmt.Errorf("%w: 餐次 %q", ErrGeneratedMealInvalid, meal.MealType)
		}

		row := model.DailyMenu{
			MealDate: model.DateOf(date),
			MealType: meal.MealType,
			Kcal:     meal.Kcal,
			Carb:     meal.Carb,
			Protein:  meal.Prot,
			Fat:      meal.Fat,
			Cost:     meal.Cost,
			Comment:  meal.Comment,
		}
		slots := meal.Slots()
		row.SetSlots(slots)
		row.RawItems = datatypes.JSONSlice[string](pureNames(slots[:]))

		k := key{date: row.MealDate, mealType: row.MealType}
		if pos, ok := index[k]; ok {
			menus[pos] = row
			continue
		}
		index[k] = len(menus)
		menus = append(menus, row)
	}

	sort.SliceStable(menus, func(i, j int) bool {
		if !menus[i].MealDate.Equal(menus[j].MealDate) {
			return menus[i].MealDate.Before(menus[j].MealDate)
		}
		return menu.MealType(menus[i].MealType).Order() < menu.MealType(menus[j].MealType).Order()
	})
	return menus, nil
}

// ═══════════════════════════════════════════════════════════
// AIReplace: AI 单餐替换
// ═══════════════════════════════════════════════════════════

func (s *mealPlanService) AIReplace(ctx context.Context, req *dto.AIReplaceRequest) (*dto.MenuMutationResponse, error) {
	current, err := s.findMenu(ctx, req.SchoolID, req.Date, req.MealType)
	if err != nil {
		return nil, err
	}

	genReq := &generator.ReplaceRequest{
		SchoolID:       req.SchoolID,
		Date:           req.Date,
		MealType:       req.MealType,
		CurrentItems:   current.Items(),
		Reason:         req.Reason,
		PreviousReport: s.previousReport(ctx, req.SchoolID, current.MealDate.Year(), int(current.MealDate.Month())),
	}
	resp, err := s.gen.ReplaceMeal(ctx, genReq)
	if err != nil {
		s.logger.Error("AI 替换调用失败",
			zap.Uint64("school_id", req.SchoolID),
			zap.String("meal_date", req.Date),
			zap.String("meal_type", req.MealType),
			zap.Error(err),
		)
		return nil, pkgerrors.NewMenuError(req.SchoolID, current.MealDate, req.MealType, fmt.Errorf("调用生成服务: %w", err))
	}

	mutation := &MenuMutation{
		ActionType: menu.ActionAIAutoReplace,
		Reason:     req.Reason,
		Totals: NutritionTotals{
			Kcal:    resp.Kcal,
			Carb:    resp.Carb,
			Protein: resp.Prot,
			Fat:     resp.Fat,
		},
		Cost:      resp.Cost,
		Comment:   current.Comment,
		PureNames: make([]string, 0, menu.SlotCount),
	}
	if mutation.Reason == "" {
		mutation.Reason = resp.Reason
	}
	if resp.Comment != "" {
		mutation.Comment = resp.Comment
	}

	for _, name := range resp.Items {
		if len(mutation.PureNames) == menu.SlotCount {
			break
		}
		pure := menu.StripAnnotation(name)
		if pure == "" {
			continue
		}
		display, _ := s.nutrition.Annotate(ctx, pure)
		mutation.Slots[len(mutation.PureNames)] = display
		mutation.PureNames = append(mutation.PureNames, pure)
	}
	if len(mutation.PureNames) == 0 {
		return nil, pkgerrors.NewMenuError(req.SchoolID, current.MealDate, req.MealType, ErrGeneratorEmpty)
	}

	updated, err := s.applyMutation(ctx, req.SchoolID, current, mutation)
	if err != nil {
		return nil, err
	}
	return &dto.MenuMutationResponse{
		Menu:       toDailyMenuResponse(updated),
		ActionType: string(mutation.ActionType),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// ManualUpdate: 手动编辑
// ═══════════════════════════════════════════════════════════

func (s *mealPlanService) ManualUpdate(ctx context.Context, req *dto.ManualUpdateRequest) (*dto.MenuMutationResponse, error) {
	current, err := s.findMenu(ctx, req.SchoolID, req.Date, req.MealType)
	if err != nil {
		return nil, err
	}

	enriched := s.nutrition.Aggregate(ctx, req.Items)
	if len(enriched.PureNames) == 0 {
		return nil, ErrEmptyItems
	}

	cost, err := s.cost.SumPrices(ctx, enriched.PureNames)
	if err != nil {
		return nil, pkgerrors.NewMenuError(req.SchoolID, current.MealDate, req.MealType, err)
	}

	mutation := &MenuMutation{
		ActionType: menu.ActionManualUpdate,
		Reason:     req.Reason,
		Slots:      enriched.Slots,
		PureNames:  enriched.PureNames,
		Totals:     enriched.Totals,
		Cost:       cost,
		Comment:    current.Comment,
	}

	updated, err := s.applyMutation(ctx, req.SchoolID, current, mutation)
	if err != nil {
		return nil, err
	}
	return &dto.MenuMutationResponse{
		Menu:       toDailyMenuResponse(updated),
		ActionType: string(mutation.ActionType),
		Unmatched:  enriched.Unmatched,
	}, nil
}

// applyMutation 在同一事务内整体替换菜单行并追加历史
func (s *mealPlanService) applyMutation(ctx context.Context, schoolID uint64, current *model.DailyMenu, m *MenuMutation) (*model.DailyMenu, error) {
	if !m.ActionType.Valid() {
		return nil, ErrInvalidActionType
	}

	updated := *current
	updated.SetSlots(m.Slots)
	updated.Kcal = m.Totals.Kcal
	updated.Carb = m.Totals.Carb
	updated.Protein = m.Totals.Protein
	updated.Fat = m.Totals.Fat
	updated.Cost = m.Cost
	updated.Comment = m.Comment
	updated.RawItems = datatypes.JSONSlice[string](m.PureNames)

	createdAt := current.CreatedAt
	rec := &HistoryRecord{
		SchoolID:      schoolID,
		Date:          current.MealDate,
		MealType:      current.MealType,
		OldItems:      current.Items(),
		NewItems:      updated.Items(),
		Reason:        m.Reason,
		ActionType:    m.ActionType,
		MenuCreatedAt: &createdAt,
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.DailyMenu.Replace(ctx, &updated); err != nil {
			return err
		}
		return recordHistory(ctx, txRepo, s.cfg.History.Delimiter, rec)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrDailyMenuNotFound
		}
		s.logger.Error("保存菜单修改失败",
			zap.Uint64("school_id", schoolID),
			zap.Time("meal_date", current.MealDate),
			zap.String("meal_type", current.MealType),
			zap.String("action_type", string(m.ActionType)),
			zap.Error(err),
		)
		return nil, pkgerrors.NewMenuError(schoolID, current.MealDate, current.MealType, err)
	}

	updated.UpdatedAt = time.Now()
	s.logger.Info("菜单已修改",
		zap.Uint64("school_id", schoolID),
		zap.Time("meal_date", current.MealDate),
		zap.String("meal_type", current.MealType),
		zap.String("action_type", string(m.ActionType)),
	)
	return &updated, nil
}

// findMenu 解析参数并定位菜单行
func (s *mealPlanService) findMenu(ctx context.Context, schoolID uint64, dateStr, mealType string) (*model.DailyMenu, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if !menu.MealType(mealType).Valid() {
		return nil, ErrInvalidMealType
	}

	current, err := s.repo.DailyMenu.GetBySchoolDateMeal(ctx, schoolID, date, mealType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewMenuError(schoolID, date, mealType, ErrDailyMenuNotFound)
		}
		s.logger.Error("查询菜单行失败",
			zap.Uint64("school_id", schoolID),
			zap.String("meal_date", dateStr),
			zap.String("meal_type", mealType),
			zap.Error(err),
		)
		return nil, err
	}
	return current, nil
}

// previousReport 上月报告；不存在或查询失败时返回 nil
func (s *mealPlanService) previousReport(ctx context.Context, schoolID uint64, year, month int) *generator.Report {
	prev := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	plan, err := s.repo.MonthlyPlan.GetBySchoolAndMonth(ctx, schoolID, prev.Year(), int(prev.Month()))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询上月菜单失败", zap.Uint64("school_id", schoolID), zap.Error(err))
		}
		return nil
	}
	menus, err := s.repo.DailyMenu.ListByPlan(ctx, plan.ID)
	if err != nil {
		s.logger.Warn("查询上月菜单行失败", zap.Uint64("plan_id", plan.ID), zap.Error(err))
		return nil
	}
	if len(menus) == 0 {
		return nil
	}
	return toGeneratorReport(BuildMonthlyReport(prev.Year(), int(prev.Month()), menus))
}

// ═══════════════════════════════════════════════════════════
// 读视图
// ═══════════════════════════════════════════════════════════

func (s *mealPlanService) GetDaily(ctx context.Context, schoolID uint64, dateStr string) (*dto.DailyViewResponse, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	menus, err := s.repo.DailyMenu.ListBySchoolAndDateRange(ctx, schoolID, date, date)
	if err != nil {
		s.logger.Error("查询日菜单失败", zap.Uint64("school_id", schoolID), zap.String("date", dateStr), zap.Error(err))
		return nil, err
	}

	view := &dto.DailyViewResponse{
		SchoolID: schoolID,
		Date:     date.Format(dateLayout),
		Menus:    make([]dto.DailyMenuResponse, 0, len(menus)),
	}
	for i := range menus {
		view.Menus = append(view.Menus, toDailyMenuResponse(&menus[i]))
	}
	return view, nil
}

func (s *mealPlanService) GetWeekly(ctx context.Context, schoolID uint64, startStr string) (*dto.WeeklyViewResponse, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, weekDays-1)

	menus, err := s.repo.DailyMenu.ListBySchoolAndDateRange(ctx, schoolID, start, end)
	if err != nil {
		s.logger.Error("查询周菜单失败", zap.Uint64("school_id", schoolID), zap.String("start", startStr), zap.Error(err))
		return nil, err
	}

	byDate := make(map[string][]dto.DailyMenuResponse, weekDays)
	for i := range menus {
		resp := toDailyMenuResponse(&menus[i])
		byDate[resp.Date] = append(byDate[resp.Date], resp)
	}

	view := &dto.WeeklyViewResponse{
		SchoolID:  schoolID,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Days:      make([]dto.DailyViewResponse, 0, weekDays),
	}
	for d := 0; d < weekDays; d++ {
		day := start.AddDate(0, 0, d).Format(dateLayout)
		dayMenus := byDate[day]
		if dayMenus == nil {
			dayMenus = []dto.DailyMenuResponse{}
		}
		view.Days = append(view.Days, dto.DailyViewResponse{SchoolID: schoolID, Date: day, Menus: dayMenus})
	}
	return view, nil
}

func (s *mealPlanService) GetMonthly(ctx context.Context, schoolID uint64, year, month int) (*dto.MonthlyPlanResponse, error) {
	plan, err := s.repo.MonthlyPlan.GetBySchoolAndMonth(ctx, schoolID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		s.logger.Error("查询月度菜单失败", zap.Uint64("school_id", schoolID), zap.Error(err))
		return nil, err
	}
	menus, err := s.repo.DailyMenu.ListByPlan(ctx, plan.ID)
	if err != nil {
		s.logger.Error("查询月度菜单行失败", zap.Uint64("plan_id", plan.ID), zap.Error(err))
		return nil, err
	}
	return s.toMonthlyPlanResponse(plan, menus), nil
}

// ── 辅助函数 ──

func (s *mealPlanService) toMonthlyPlanResponse(plan *model.MonthlyPlan, menus []model.DailyMenu) *dto.MonthlyPlanResponse {
	resp := &dto.MonthlyPlanResponse{
		ID:       plan.ID,
		SchoolID: plan.SchoolID,
		Year:     plan.Year,
		Month:    plan.Month,
		Menus:    make([]dto.DailyMenuResponse, 0, len(menus)),
		Report:   BuildMonthlyReport(plan.Year, plan.Month, menus),
	}
	for i := range menus {
		resp.Menus = append(resp.Menus, toDailyMenuResponse(&menus[i]))
	}
	return resp
}

func toDailyMenuResponse(m *model.DailyMenu) dto.DailyMenuResponse {
	slots := m.SlotValues()
	raw := []string(m.RawItems)
	if raw == nil {
		raw = []string{}
	}
	return dto.DailyMenuResponse{
		ID:        m.ID,
		Date:      m.MealDate.Format(dateLayout),
		MealType:  m.MealType,
		Rice:      slots[0],
		Soup:      slots[1],
		Main1:     slots[2],
		Main2:     slots[3],
		Side:      slots[4],
		Kimchi:    slots[5],
		Dessert:   slots[6],
		Kcal:      m.Kcal,
		Carb:      m.Carb,
		Protein:   m.Protein,
		Fat:       m.Fat,
		Cost:      m.Cost,
		Comment:   m.Comment,
		RawItems:  raw,
		Allergens: menu.AggregateAllergens(slots[:]),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}

// pureNames 去除注释后的非空菜名
func pureNames(displays []string) []string {
	names := make([]string, 0, len(displays))
	for _, d := range displays {
		if name := menu.StripAnnotation(d); name != "" {
			names = append(names, name)
		}
	}
	return names
}
