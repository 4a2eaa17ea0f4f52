package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoMenus      = errors.New("该月菜单中没有菜单行")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 格式：每个 (日期, 餐次) 一行，列为 7 个菜位 + 营养 + 成本 + 过敏原。
type ExportService interface {
	// ExportMonth 导出月度菜单为 Excel
	ExportMonth(ctx context.Context, schoolID uint64, year, month int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportMonth: 导出月度菜单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（合并单元格）
//   - 第 2 行：表头
//   - 第 3 行起：按日期升序、同日午餐在前
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMonth(ctx context.Context, schoolID uint64, year, month int) (*bytes.Buffer, string, error) {
	// 1. 查询月度计划
	plan, err := s.repo.MonthlyPlan.GetBySchoolAndMonth(ctx, schoolID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrMealPlanNotFound
		}
		s.logger.Error("查询月度菜单失败", zap.Uint64("school_id", schoolID), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询菜单行
	menus, err := s.repo.DailyMenu.ListByPlan(ctx, plan.ID)
	if err != nil {
		s.logger.Error("查询菜单行失败", zap.Uint64("plan_id", plan.ID), zap.Error(err))
		return nil, "", err
	}
	if len(menus) == 0 {
		return nil, "", ErrExportNoMenus
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("%d-%02d", year, month)
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "餐次"}
	for _, slot := range menu.Slots {
		headers = append(headers, string(slot))
	}
	headers = append(headers, "kcal", "carb", "protein", "fat", "cost", "allergens")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 9)
	f.SetColWidth(sheetName, colName(2), colName(1+menu.SlotCount), 20)
	f.SetColWidth(sheetName, colName(2+menu.SlotCount), colName(len(headers)-1), 10)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("学校 %d %d年%d月 菜单", schoolID, year, month))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	// 数据行
	row = 3
	for i := range menus {
		m := &menus[i]
		slots := m.SlotValues()
		values := []interface{}{m.MealDate.Format(dateLayout), m.MealType}
		for _, v := range slots {
			values = append(values, v)
		}
		values = append(values,
			m.Kcal.InexactFloat64(),
			m.Carb.InexactFloat64(),
			m.Protein.InexactFloat64(),
			m.Fat.InexactFloat64(),
			m.Cost,
			joinCodes(menu.AggregateAllergens(slots[:]).UniqueAllergens),
		)
		if err := f.SetSheetRow(sheetName, cell("A", row), &values); err != nil {
			s.logger.Error("写入 Excel 行失败", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("meal_plan_%d_%d_%02d.xlsx", schoolID, year, month)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func joinCodes(codes []int) string {
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, fmt.Sprint(c))
	}
	return strings.Join(parts, ",")
}
