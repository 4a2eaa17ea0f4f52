package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/menu"
	"nutri-assistant/backend/internal/model"
	"nutri-assistant/backend/internal/repository"
)

// ── 修改历史模块业务错误 ──

var (
	ErrInvalidDate       = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrInvalidDateRange  = errors.New("日期区间需同时提供开始与结束日期，且开始不晚于结束")
	ErrInvalidActionType = errors.New("不支持的修改类型")
)

const dateLayout = "2006-01-02"

// HistoryRecord 一条待追加的修改历史；菜品列表由服务按配置分隔符拼接
type HistoryRecord struct {
	SchoolID      uint64
	Date          time.Time
	MealType      string
	OldItems      []string
	NewItems      []string
	Reason        string
	ActionType    menu.ActionType
	MenuCreatedAt *time.Time
}

// HistoryPage 修改历史分页结果
type HistoryPage struct {
	Items []dto.HistoryResponse
	Total int64
	Page  int
	Size  int
}

// HistoryService 菜单修改历史业务接口（只追加，不提供修改/删除）
type HistoryService interface {
	Record(ctx context.Context, rec *HistoryRecord) error
	// Query 按学校 + 可选日期区间 + 可选类型检索，id 降序，页码从 0 开始
	Query(ctx context.Context, req *dto.HistoryQueryRequest) (*HistoryPage, error)
}

type historyService struct {
	cfg    *config.HistoryConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewHistoryService 创建 HistoryService 实例
func NewHistoryService(cfg *config.HistoryConfig, repo *repository.Repository, logger *zap.Logger) HistoryService {
	return &historyService{cfg: cfg, repo: repo, logger: logger}
}

func (s *historyService) Record(ctx context.Context, rec *HistoryRecord) error {
	return recordHistory(ctx, s.repo, s.cfg.Delimiter, rec)
}

// recordHistory 在给定的 Repository（可为事务绑定）上追加一条历史
func recordHistory(ctx context.Context, repo *repository.Repository, delimiter string, rec *HistoryRecord) error {
	if !rec.ActionType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidActionType, rec.ActionType)
	}
	return repo.History.Create(ctx, &model.MenuHistory{
		SchoolID:      rec.SchoolID,
		MealDate:      model.DateOf(rec.Date),
		MealType:      rec.MealType,
		ActionType:    string(rec.ActionType),
		OldItems:      menu.JoinItems(rec.OldItems, delimiter),
		NewItems:      menu.JoinItems(rec.NewItems, delimiter),
		Reason:        rec.Reason,
		MenuCreatedAt: rec.MenuCreatedAt,
	})
}

func (s *historyService) Query(ctx context.Context, req *dto.HistoryQueryRequest) (*HistoryPage, error) {
	filter := repository.HistoryFilter{SchoolID: req.SchoolID}

	if req.ActionType != "" {
		if !menu.ActionType(req.ActionType).Valid() {
			return nil, ErrInvalidActionType
		}
		filter.ActionType = req.ActionType
	}

	start, end, err := parseDateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	filter.Start, filter.End = start, end

	size := req.GetSize(s.cfg.PageSize)
	page := req.GetPage()

	histories, total, err := s.repo.History.List(ctx, filter, page*size, size)
	if err != nil {
		s.logger.Error("查询修改历史失败", zap.Uint64("school_id", req.SchoolID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.HistoryResponse, 0, len(histories))
	for i := range histories {
		items = append(items, toHistoryResponse(&histories[i]))
	}
	return &HistoryPage{Items: items, Total: total, Page: page, Size: size}, nil
}

// parseDateRange 两端都为空时返回 nil 区间；只给一端视为错误
func parseDateRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	if startStr == "" && endStr == "" {
		return nil, nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, nil, ErrInvalidDateRange
	}
	start, err := parseDate(startStr)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDate(endStr)
	if err != nil {
		return nil, nil, err
	}
	if start.After(end) {
		return nil, nil, ErrInvalidDateRange
	}
	return &start, &end, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

func toHistoryResponse(h *model.MenuHistory) dto.HistoryResponse {
	resp := dto.HistoryResponse{
		ID:         h.ID,
		SchoolID:   h.SchoolID,
		MealDate:   h.MealDate.Format(dateLayout),
		MealType:   h.MealType,
		ActionType: h.ActionType,
		OldItems:   menu.SplitItems(h.OldItems),
		NewItems:   menu.SplitItems(h.NewItems),
		Reason:     h.Reason,
		CreatedAt:  h.CreatedAt.Format(time.RFC3339),
	}
	if h.MenuCreatedAt != nil {
		resp.MenuCreatedAt = h.MenuCreatedAt.Format(time.RFC3339)
	}
	return resp
}
