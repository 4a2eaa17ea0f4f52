package menu

import "strings"

const (
	// DefaultDelimiter 历史记录中菜品的默认拼接分隔符
	DefaultDelimiter = ", "
	// legacyDelimiter 旧数据使用的分隔符，读取时仍需兼容
	legacyDelimiter = " || "
)

// JoinItems 用分隔符拼接菜品列表
func JoinItems(items []string, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return strings.Join(items, delimiter)
}

// SplitItems 将历史记录中的拼接串还原为菜品列表。
//
// 含 " || " 的旧格式按该分隔符切分；否则按逗号切分，
// 但括号内的逗号（过敏原编号）不作为分隔点。空片段被丢弃。
func SplitItems(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}
	if strings.Contains(joined, legacyDelimiter) {
		return compact(strings.Split(joined, legacyDelimiter))
	}

	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(joined); i++ {
		switch joined[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, joined[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, joined[start:])
	return compact(parts)
}

func compact(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
