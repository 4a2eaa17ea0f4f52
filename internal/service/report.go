package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
)

// topItemLimit 月报中高频菜品的数量
const topItemLimit = 10

// BuildMonthlyReport 汇总一个月的菜单：平均营养、总成本、过敏原出现次数（按餐计）与高频菜品
func BuildMonthlyReport(year, month int, menus []model.DailyMenu) dto.MonthlyReport {
	report := dto.MonthlyReport{
		Year:              year,
		Month:             month,
		MealCount:         len(menus),
		AvgKcal:           decimal.Zero,
		AvgCarb:           decimal.Zero,
		AvgProtein:        decimal.Zero,
		AvgFat:            decimal.Zero,
		AllergenFrequency: make(map[int]int),
		TopItems:          []string{},
	}
	if len(menus) == 0 {
		return report
	}

	var totals NutritionTotals
	itemCount := make(map[string]int)
	for i := range menus {
		m := &menus[i]
		totals.Kcal = totals.Kcal.Add(m.Kcal)
		totals.Carb = totals.Carb.Add(m.Carb)
		totals.Protein = totals.Protein.Add(m.Protein)
		totals.Fat = totals.Fat.Add(m.Fat)
		report.TotalCost += m.Cost

		items := m.Items()
		for _, code := range menu.AggregateAllergens(items).UniqueAllergens {
			report.AllergenFrequency[code]++
		}
		for _, display := range items {
			if name := menu.Decode(display).Name; name != "" {
				itemCount[name]++
			}
		}
	}

	n := decimal.NewFromInt(int64(len(menus)))
	report.AvgKcal = totals.Kcal.Div(n).Round(2)
	report.AvgCarb = totals.Carb.Div(n).Round(2)
	report.AvgProtein = totals.Protein.Div(n).Round(2)
	report.AvgFat = totals.Fat.Div(n).Round(2)
	report.TopItems = topItems(itemCount, topItemLimit)
	return report
}

// topItems 按出现次数降序、菜名升序取前 limit 个
func topItems(count map[string]int, limit int) []string {
	names := make([]string, 0, len(count))
	for name := range count {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if count[names[i]] != count[names[j]] {
			return count[names[i]] > count[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func toGeneratorReport(r dto.MonthlyReport) *generator.Report {
	return &generator.Report{
		Year:              r.Year,
		Month:             r.Month,
		MealCount:         r.MealCount,
		AvgKcal:           r.AvgKcal,
		AvgCarb:           r.AvgCarb,
		AvgProtein:        r.AvgProtein,
		AvgFat:            r.AvgFat,
		TotalCost:         r.TotalCost,
		AllergenFrequency: r.AllergenFrequency,
		TopItems:          r.TopItems,
	}
}
