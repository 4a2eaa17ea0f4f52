package menu

import (
	"strings"
	"unicode"
)

// Slot 一餐中的固定菜位
type Slot string

const (
	SlotRice    Slot = "rice"
	SlotSoup    Slot = "soup"
	SlotMain1   Slot = "main1"
	SlotMain2   Slot = "main2"
	SlotSide    Slot = "side"
	SlotKimchi  Slot = "kimchi"
	SlotDessert Slot = "dessert"
)

// SlotCount 每餐菜位数
const SlotCount = 7

// Slots 菜位的固定顺序（饭、汤、主菜1、主菜2、配菜、泡菜、甜点）
var Slots = [SlotCount]Slot{SlotRice, SlotSoup, SlotMain1, SlotMain2, SlotSide, SlotKimchi, SlotDessert}

// MealType 餐次
type MealType string

const (
	MealLunch  MealType = "LUNCH"
	MealDinner MealType = "DINNER"
)

// Valid 是否为合法餐次
func (m MealType) Valid() bool {
	return m == MealLunch || m == MealDinner
}

// Order 餐次排序权重（午餐在前）
func (m MealType) Order() int {
	if m == MealDinner {
		return 1
	}
	return 0
}

// ActionType 菜单修改历史的动作类型
type ActionType string

const (
	ActionAIAutoReplace ActionType = "AI_AUTO_REPLACE"
	ActionManualUpdate  ActionType = "MANUAL_UPDATE"
)

// Valid 是否为合法动作类型
func (a ActionType) Valid() bool {
	return a == ActionAIAutoReplace || a == ActionManualUpdate
}

// NormalizeKey 去除全部空白字符，作为营养目录的匹配键（区分大小写）
func NormalizeKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}
