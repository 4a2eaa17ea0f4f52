// Package menu 实现菜单展示串（菜名 + 过敏原编号）的编解码。
//
// 展示串格式为 "菜名" 或 "菜名(c1,c2,...)"，该格式是已落库数据的契约，不可变更。
// 所有读写展示串的组件都必须经由本包处理，避免各处正则的边界行为不一致。
package menu

import (
	"strconv"
	"strings"
)

const (
	// MinAllergenCode 过敏原编号下界
	MinAllergenCode = 1
	// MaxAllergenCode 过敏原编号上界
	MaxAllergenCode = 19
)

// Item 解码后的菜品
type Item struct {
	Name  string
	Codes []int
}

// Encode 将菜名与过敏原编号编码为展示串。
// 编号按传入顺序输出，需要确定性时由调用方先排序。
func Encode(name string, codes []int) string {
	if len(codes) == 0 {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 3*len(codes) + 2)
	b.WriteString(name)
	b.WriteByte('(')
	for i, c := range codes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	b.WriteByte(')')
	return b.String()
}

// Decode 解析展示串，永不失败。
//
// 仅当末尾括号内的每个非空片段都是整数时才视为过敏原数据并剥离；
// 否则括号保留为菜名的一部分（如 "된장국(특대)"）。
// 空片段与超出 1-19 的编号被丢弃。
func Decode(display string) Item {
	s := strings.TrimSpace(display)
	open, ok := trailingGroup(s)
	if !ok {
		return Item{Name: s}
	}

	codes, ok := parseCodes(s[open+1 : len(s)-1])
	if !ok {
		return Item{Name: s}
	}
	return Item{Name: strings.TrimSpace(s[:open]), Codes: codes}
}

// StripAnnotation 去除末尾括号注释（不论内容是否合法），得到纯菜名。
// 用于营养目录查询前还原不带过敏原的菜名。
func StripAnnotation(display string) string {
	s := strings.TrimSpace(display)
	if !strings.HasSuffix(s, ")") {
		return s
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s
	}
	return strings.TrimSpace(s[:open])
}

// ParseAllergyInfo 解析营养目录中逗号拼接的过敏原字符串（如 "5,6,13"）
func ParseAllergyInfo(info string) []int {
	codes, _ := parseCodes(info)
	return codes
}

// trailingGroup 返回末尾 "(...)" 中左括号的位置；括号内不得再含括号
func trailingGroup(s string) (int, bool) {
	if !strings.HasSuffix(s, ")") {
		return 0, false
	}
	open := strings.LastIndexByte(s, '(')
	if open < 0 {
		return 0, false
	}
	if strings.ContainsAny(s[open+1:len(s)-1], "()") {
		return 0, false
	}
	return open, true
}

// parseCodes 解析逗号分隔的整数列表。
// 任一非空片段不是整数时返回 false；全部为空时也返回 false。
func parseCodes(inner string) ([]int, bool) {
	parts := strings.Split(inner, ",")
	codes := make([]int, 0, len(parts))
	seen := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		seen++
		if n < MinAllergenCode || n > MaxAllergenCode {
			continue
		}
		codes = append(codes, n)
	}
	if seen == 0 {
		return nil, false
	}
	return codes, true
}
