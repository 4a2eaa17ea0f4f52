package menu

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MenuAllergens 单个菜品的过敏原编号
type MenuAllergens struct {
	Name  string
	Codes []int
}

// AllergenMap 菜名 → 过敏原编号的有序映射，顺序即菜位顺序
type AllergenMap []MenuAllergens

// Get 按菜名查找过敏原编号
func (m AllergenMap) Get(name string) ([]int, bool) {
	for _, e := range m {
		if e.Name == name {
			return e.Codes, true
		}
	}
	return nil, false
}

// MarshalJSON 输出为保持插入顺序的 JSON 对象
func (m AllergenMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		codes := e.Codes
		if codes == nil {
			codes = []int{}
		}
		val, err := json.Marshal(codes)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AllergenSummary 一餐的过敏原汇总
type AllergenSummary struct {
	UniqueAllergens []int       `json:"unique_allergens"`
	ByMenu          AllergenMap `json:"by_menu"`
}

// AggregateAllergens 汇总一餐（最多 7 个菜位）的过敏原。
//
// 空菜位跳过；无过敏原的菜品不进入 ByMenu。
// 同名菜品保留首次出现的位置，编号取最后一次。
func AggregateAllergens(slots []string) AllergenSummary {
	summary := AllergenSummary{UniqueAllergens: []int{}, ByMenu: AllergenMap{}}
	var all []int

	for _, display := range slots {
		item := Decode(display)
		if item.Name == "" || len(item.Codes) == 0 {
			continue
		}
		all = append(all, item.Codes...)

		replaced := false
		for i := range summary.ByMenu {
			if summary.ByMenu[i].Name == item.Name {
				summary.ByMenu[i].Codes = item.Codes
				replaced = true
				break
			}
		}
		if !replaced {
			summary.ByMenu = append(summary.ByMenu, MenuAllergens{Name: item.Name, Codes: item.Codes})
		}
	}

	summary.UniqueAllergens = SortedUnique(all)
	return summary
}

// SortedUnique 升序去重；结果从不为 nil
func SortedUnique(codes []int) []int {
	out := make([]int, 0, len(codes))
	if len(codes) == 0 {
		return out
	}
	sorted := append([]int(nil), codes...)
	sort.Ints(sorted)
	for i, c := range sorted {
		if i > 0 && c == sorted[i-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}
