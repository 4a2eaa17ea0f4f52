package errors

import (
	"errors"
	"fmt"
	"time"
)

// ── 跨模块错误分类 ──

var (
	// ErrNotFound 引用的计划/菜单行/学校不存在（不重试）
	ErrNotFound = errors.New("记录不存在")
	// ErrExternalService 外部 AI 生成服务不可达、超时或返回 5xx（可重试，本地状态未改动）
	ErrExternalService = errors.New("外部生成服务调用失败")
	// ErrLedgerPrecondition 单价台账前置条件不满足（如对空台账重新定价）
	ErrLedgerPrecondition = errors.New("单价台账前置条件不满足")
)

// MenuError 携带具体菜单行上下文的错误，便于调用方重试或上报
type MenuError struct {
	SchoolID uint64
	Date     time.Time
	MealType string
	Err      error
}

func (e *MenuError) Error() string {
	return fmt.Sprintf("school=%d date=%s meal=%s: %v",
		e.SchoolID, e.Date.Format("2006-01-02"), e.MealType, e.Err)
}

func (e *MenuError) Unwrap() error { return e.Err }

// NewMenuError 构造菜单行错误
func NewMenuError(schoolID uint64, date time.Time, mealType string, err error) error {
	return &MenuError{SchoolID: schoolID, Date: date, MealType: mealType, Err: err}
}

// IsRetryable 是否为可重试错误（仅外部服务失败）
func IsRetryable(err error) bool {
	return errors.Is(err, ErrExternalService)
}
