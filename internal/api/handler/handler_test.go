package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/internal/dto"
	"nutri-assistant/backend/internal/generator"
	"nutri-assistant/backend/internal/service"
	pkgerrors "nutri-assistant/backend/pkg/errors"
	"nutri-assistant/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock MealPlanService ──

type mockMealPlanService struct {
	generateResult *dto.MonthlyPlanResponse
	generateErr    error
	replaceResult  *dto.MenuMutationResponse
	replaceErr     error
	manualResult   *dto.MenuMutationResponse
	manualErr      error
	dailyResult    *dto.DailyViewResponse
	dailyErr       error
	weeklyResult   *dto.WeeklyViewResponse
	weeklyErr      error
	monthlyResult  *dto.MonthlyPlanResponse
	monthlyErr     error

	lastSchoolID uint64
	lastYear     int
	lastMonth    int
	lastDate     string
}

func (m *mockMealPlanService) Generate(_ context.Context, _ *dto.GenerateMealPlanRequest) (*dto.MonthlyPlanResponse, error) {
	return m.generateResult, m.generateErr
}
func (m *mockMealPlanService) AIReplace(_ context.Context, _ *dto.AIReplaceRequest) (*dto.MenuMutationResponse, error) {
	return m.replaceResult, m.replaceErr
}
func (m *mockMealPlanService) ManualUpdate(_ context.Context, _ *dto.ManualUpdateRequest) (*dto.MenuMutationResponse, error) {
	return m.manualResult, m.manualErr
}
func (m *mockMealPlanService) GetDaily(_ context.Context, schoolID uint64, date string) (*dto.DailyViewResponse, error) {
	m.lastSchoolID, m.lastDate = schoolID, date
	return m.dailyResult, m.dailyErr
}
func (m *mockMealPlanService) GetWeekly(_ context.Context, schoolID uint64, start string) (*dto.WeeklyViewResponse, error) {
	m.lastSchoolID, m.lastDate = schoolID, start
	return m.weeklyResult, m.weeklyErr
}
func (m *mockMealPlanService) GetMonthly(_ context.Context, schoolID uint64, year, month int) (*dto.MonthlyPlanResponse, error) {
	m.lastSchoolID, m.lastYear, m.lastMonth = schoolID, year, month
	return m.monthlyResult, m.monthlyErr
}

// ── Mock CostService ──

type mockCostService struct {
	lookupResult  *dto.CostEntryResponse
	lookupErr     error
	bulkResult    *dto.BulkUpsertCostResponse
	bulkErr       error
	repriceResult *dto.RepriceResponse
	repriceErr    error
	listResult    []dto.CostEntryResponse
	listTotal     int64
	listErr       error
}

func (m *mockCostService) Lookup(_ context.Context, _ string) (*dto.CostEntryResponse, error) {
	return m.lookupResult, m.lookupErr
}
func (m *mockCostService) BulkUpsert(_ context.Context, _ *dto.BulkUpsertCostRequest) (*dto.BulkUpsertCostResponse, error) {
	return m.bulkResult, m.bulkErr
}
func (m *mockCostService) RepriceForYear(_ context.Context, _ int) (*dto.RepriceResponse, error) {
	return m.repriceResult, m.repriceErr
}
func (m *mockCostService) InflationMultiplier(_, _ int) float64 { return 1 }
func (m *mockCostService) List(_ context.Context, _ *dto.CostListRequest) ([]dto.CostEntryResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockCostService) UnitCosts(_ context.Context) ([]generator.UnitCost, error) {
	return nil, nil
}
func (m *mockCostService) SumPrices(_ context.Context, _ []string) (int, error) {
	return 0, nil
}

// ── Mock HistoryService ──

type mockHistoryService struct {
	queryResult *service.HistoryPage
	queryErr    error
	lastQuery   *dto.HistoryQueryRequest
}

func (m *mockHistoryService) Record(_ context.Context, _ *service.HistoryRecord) error {
	return nil
}
func (m *mockHistoryService) Query(_ context.Context, req *dto.HistoryQueryRequest) (*service.HistoryPage, error) {
	m.lastQuery = req
	return m.queryResult, m.queryErr
}

// ── Mock FoodService ──

type mockFoodService struct {
	result  *dto.FoodImportResponse
	err     error
	gotBody []byte
}

func (m *mockFoodService) ImportFoods(_ context.Context, r io.Reader) (*dto.FoodImportResponse, error) {
	m.gotBody, _ = io.ReadAll(r)
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportMonth(_ context.Context, _ uint64, _, _ int) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parsePage(t *testing.T, w *httptest.ResponseRecorder) response.Pagination {
	t.Helper()
	var resp struct {
		Data response.PageData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	return resp.Data.Pagination
}

func mealPlanRouter(h *MealPlanHandler) *gin.Engine {
	r := gin.New()
	r.POST("/meal-plans/generate", h.Generate)
	r.GET("/meal-plans/:school_id/daily", h.GetDaily)
	r.GET("/meal-plans/:school_id/weekly", h.GetWeekly)
	r.GET("/meal-plans/:school_id/:year/:month", h.GetMonthly)
	r.POST("/daily-menus/ai-replace", h.AIReplace)
	r.PUT("/daily-menus/manual", h.ManualUpdate)
	return r
}

// ═══════════════════════════════════════════════════════════
// MealPlanHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMealPlanHandler_Generate_Success(t *testing.T) {
	mock := &mockMealPlanService{
		generateResult: &dto.MonthlyPlanResponse{ID: 1, SchoolID: 7, Year: 2025, Month: 3},
	}
	h := NewMealPlanHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/meal-plans/generate", jsonBody(dto.GenerateMealPlanRequest{
		SchoolID: 7, Year: 2025, Month: 3, MealTypes: []string{"LUNCH"},
	}))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestMealPlanHandler_Generate_BadJSON(t *testing.T) {
	h := NewMealPlanHandler(&mockMealPlanService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/meal-plans/generate", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMealPlanHandler_Generate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body dto.GenerateMealPlanRequest
	}{
		{"month out of range", dto.GenerateMealPlanRequest{SchoolID: 7, Year: 2025, Month: 13}},
		{"missing school", dto.GenerateMealPlanRequest{Year: 2025, Month: 3}},
		{"unknown meal type", dto.GenerateMealPlanRequest{SchoolID: 7, Year: 2025, Month: 3, MealTypes: []string{"BREAKFAST"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMealPlanHandler(&mockMealPlanService{})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/meal-plans/generate", jsonBody(tt.body))
			req.Header.Set("Content-Type", "application/json")

			mealPlanRouter(h).ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != 10001 {
				t.Errorf("expected code 10001, got %d", resp.Code)
			}
		})
	}
}

func TestMealPlanHandler_Generate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"external service", fmt.Errorf("%w: timeout", pkgerrors.ErrExternalService), http.StatusBadGateway, 50201},
		{"generator empty", service.ErrGeneratorEmpty, http.StatusBadGateway, 50201},
		{"rejected", fmt.Errorf("%w: 422", generator.ErrGeneratorRejected), http.StatusUnprocessableEntity, 20006},
		{"unexpected", fmt.Errorf("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMealPlanHandler(&mockMealPlanService{generateErr: tt.err})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/meal-plans/generate", jsonBody(dto.GenerateMealPlanRequest{
				SchoolID: 7, Year: 2025, Month: 3,
			}))
			req.Header.Set("Content-Type", "application/json")

			mealPlanRouter(h).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestMealPlanHandler_GetMonthly_Success(t *testing.T) {
	mock := &mockMealPlanService{
		monthlyResult: &dto.MonthlyPlanResponse{ID: 3, SchoolID: 7, Year: 2025, Month: 3},
	}
	h := NewMealPlanHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/2025/3", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastSchoolID != 7 || mock.lastYear != 2025 || mock.lastMonth != 3 {
		t.Errorf("unexpected params: school=%d year=%d month=%d", mock.lastSchoolID, mock.lastYear, mock.lastMonth)
	}
}

func TestMealPlanHandler_GetMonthly_NotFound(t *testing.T) {
	h := NewMealPlanHandler(&mockMealPlanService{monthlyErr: service.ErrMealPlanNotFound})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/2025/3", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("expected code 20001, got %d", resp.Code)
	}
}

func TestMealPlanHandler_GetMonthly_InvalidParams(t *testing.T) {
	paths := []string{
		"/meal-plans/abc/2025/3",
		"/meal-plans/0/2025/3",
		"/meal-plans/7/2025/13",
		"/meal-plans/7/99/3",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			h := NewMealPlanHandler(&mockMealPlanService{})

			_, _, w := setupGin()
			req := httptest.NewRequest("GET", path, nil)

			mealPlanRouter(h).ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestMealPlanHandler_GetDaily(t *testing.T) {
	mock := &mockMealPlanService{
		dailyResult: &dto.DailyViewResponse{SchoolID: 7, Date: "2025-03-04"},
	}
	h := NewMealPlanHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/daily?date=2025-03-04", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastDate != "2025-03-04" {
		t.Errorf("expected date 2025-03-04, got %q", mock.lastDate)
	}
}

func TestMealPlanHandler_GetDaily_MissingDate(t *testing.T) {
	h := NewMealPlanHandler(&mockMealPlanService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/daily", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMealPlanHandler_GetDaily_InvalidDate(t *testing.T) {
	h := NewMealPlanHandler(&mockMealPlanService{
		dailyErr: fmt.Errorf("%w: 2025/03/04", service.ErrInvalidDate),
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/daily?date=2025/03/04", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20005 {
		t.Errorf("expected code 20005, got %d", resp.Code)
	}
}

func TestMealPlanHandler_GetWeekly(t *testing.T) {
	mock := &mockMealPlanService{
		weeklyResult: &dto.WeeklyViewResponse{SchoolID: 7, StartDate: "2025-03-03", EndDate: "2025-03-09"},
	}
	h := NewMealPlanHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/weekly?start=2025-03-03", nil)

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastDate != "2025-03-03" {
		t.Errorf("expected start 2025-03-03, got %q", mock.lastDate)
	}
}

func TestMealPlanHandler_AIReplace_ExternalFailure(t *testing.T) {
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	h := NewMealPlanHandler(&mockMealPlanService{
		replaceErr: pkgerrors.NewMenuError(7, date, "LUNCH", fmt.Errorf("调用生成服务: %w", pkgerrors.ErrExternalService)),
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/daily-menus/ai-replace", jsonBody(dto.AIReplaceRequest{
		SchoolID: 7, Date: "2025-03-04", MealType: "LUNCH", Reason: "알레르기 대체",
	}))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 50201 {
		t.Errorf("expected code 50201, got %d", resp.Code)
	}
	if resp.Details == "" {
		t.Error("expected details to carry the menu context")
	}
}

func TestMealPlanHandler_AIReplace_MenuNotFound(t *testing.T) {
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	h := NewMealPlanHandler(&mockMealPlanService{
		replaceErr: pkgerrors.NewMenuError(7, date, "DINNER", service.ErrDailyMenuNotFound),
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/daily-menus/ai-replace", jsonBody(dto.AIReplaceRequest{
		SchoolID: 7, Date: "2025-03-04", MealType: "DINNER",
	}))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("expected code 20002, got %d", resp.Code)
	}
}

func TestMealPlanHandler_ManualUpdate_Success(t *testing.T) {
	mock := &mockMealPlanService{
		manualResult: &dto.MenuMutationResponse{ActionType: "MANUAL_UPDATE"},
	}
	h := NewMealPlanHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/daily-menus/manual", jsonBody(dto.ManualUpdateRequest{
		SchoolID: 7, Date: "2025-03-04", MealType: "LUNCH", Items: []string{"현미밥", "된장국"},
	}))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMealPlanHandler_ManualUpdate_NoItems(t *testing.T) {
	h := NewMealPlanHandler(&mockMealPlanService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/daily-menus/manual", jsonBody(dto.ManualUpdateRequest{
		SchoolID: 7, Date: "2025-03-04", MealType: "LUNCH", Items: []string{},
	}))
	req.Header.Set("Content-Type", "application/json")

	mealPlanRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CostHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCostHandler_ListCosts_Pagination(t *testing.T) {
	mock := &mockCostService{
		listResult: []dto.CostEntryResponse{{MenuName: "김치찌개", Price: 1200}},
		listTotal:  45,
	}
	h := NewCostHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/costs?page=1&size=20", nil)

	r := gin.New()
	r.GET("/costs", h.ListCosts)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	p := parsePage(t, w)
	if p.Page != 1 || p.PageSize != 20 || p.Total != 45 || p.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", p)
	}
}

func TestCostHandler_Lookup_MissingName(t *testing.T) {
	h := NewCostHandler(&mockCostService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/costs/lookup?name=%20", nil)

	r := gin.New()
	r.GET("/costs/lookup", h.Lookup)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCostHandler_Lookup_Default(t *testing.T) {
	mock := &mockCostService{
		lookupResult: &dto.CostEntryResponse{MenuName: "없는메뉴", Price: 1000, IsDefault: true},
	}
	h := NewCostHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/costs/lookup?name="+url.QueryEscape("없는메뉴"), nil)

	r := gin.New()
	r.GET("/costs/lookup", h.Lookup)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCostHandler_BulkUpsert_NegativePrice(t *testing.T) {
	h := NewCostHandler(&mockCostService{
		bulkErr: fmt.Errorf("%w: 김치", service.ErrCostPriceNegative),
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/costs/bulk", jsonBody(dto.BulkUpsertCostRequest{
		Prices: map[string]int{"김치": -1}, TargetYear: 2025,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/costs/bulk", h.BulkUpsert)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21002 {
		t.Errorf("expected code 21002, got %d", resp.Code)
	}
}

func TestCostHandler_Reprice_EmptyLedger(t *testing.T) {
	h := NewCostHandler(&mockCostService{repriceErr: service.ErrLedgerEmpty})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/costs/reprice", jsonBody(dto.RepriceRequest{Year: 2026}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/costs/reprice", h.Reprice)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21003 {
		t.Errorf("expected code 21003, got %d", resp.Code)
	}
}

func TestCostHandler_Reprice_Success(t *testing.T) {
	h := NewCostHandler(&mockCostService{
		repriceResult: &dto.RepriceResponse{Year: 2026, Updated: 12},
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/costs/reprice", jsonBody(dto.RepriceRequest{Year: 2026}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/costs/reprice", h.Reprice)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// HistoryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHistoryHandler_ListHistories_Success(t *testing.T) {
	mock := &mockHistoryService{
		queryResult: &service.HistoryPage{
			Items: []dto.HistoryResponse{{ID: 2, SchoolID: 7, ActionType: "MANUAL_UPDATE"}},
			Total: 1,
			Page:  0,
			Size:  20,
		},
	}
	h := NewHistoryHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/histories?school_id=7&start=2025-03-01&end=2025-03-31&action_type=MANUAL_UPDATE", nil)

	r := gin.New()
	r.GET("/histories", h.ListHistories)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastQuery.SchoolID != 7 || mock.lastQuery.Start != "2025-03-01" || mock.lastQuery.ActionType != "MANUAL_UPDATE" {
		t.Errorf("unexpected query: %+v", mock.lastQuery)
	}
	p := parsePage(t, w)
	if p.Page != 0 || p.PageSize != 20 || p.Total != 1 {
		t.Errorf("unexpected pagination: %+v", p)
	}
}

func TestHistoryHandler_ListHistories_MissingSchool(t *testing.T) {
	h := NewHistoryHandler(&mockHistoryService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/histories", nil)

	r := gin.New()
	r.GET("/histories", h.ListHistories)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHistoryHandler_ListHistories_InvalidRange(t *testing.T) {
	h := NewHistoryHandler(&mockHistoryService{queryErr: service.ErrInvalidDateRange})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/histories?school_id=7&start=2025-03-01", nil)

	r := gin.New()
	r.GET("/histories", h.ListHistories)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22002 {
		t.Errorf("expected code 22002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// FoodHandler Tests
// ═══════════════════════════════════════════════════════════

func multipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestFoodHandler_ImportFoods_Success(t *testing.T) {
	mock := &mockFoodService{result: &dto.FoodImportResponse{Imported: 3}}
	h := NewFoodHandler(mock)

	body, contentType := multipartFile(t, "file", "foods.xlsx", []byte("xlsx-bytes"))
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/foods/import", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/foods/import", h.ImportFoods)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if string(mock.gotBody) != "xlsx-bytes" {
		t.Errorf("expected uploaded content to reach service, got %q", mock.gotBody)
	}
}

func TestFoodHandler_ImportFoods_NoFile(t *testing.T) {
	h := NewFoodHandler(&mockFoodService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/foods/import", nil)

	r := gin.New()
	r.POST("/foods/import", h.ImportFoods)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 23000 {
		t.Errorf("expected code 23000, got %d", resp.Code)
	}
}

func TestFoodHandler_ImportFoods_NoHeader(t *testing.T) {
	h := NewFoodHandler(&mockFoodService{err: service.ErrImportNoHeader})

	body, contentType := multipartFile(t, "file", "foods.xlsx", []byte("xlsx-bytes"))
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/foods/import", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/foods/import", h.ImportFoods)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 23002 {
		t.Errorf("expected code 23002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportMonth_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx"),
		filename: "meal_plan_7_2025_03.xlsx",
	}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/2025/3/export", nil)

	r := gin.New()
	r.GET("/meal-plans/:school_id/:year/:month/export", h.ExportMonth)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename*=UTF-8''meal_plan_7_2025_03.xlsx" {
		t.Errorf("unexpected Content-Disposition: %s", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected Content-Type: %s", got)
	}
}

func TestExportHandler_ExportMonth_NotFound(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrMealPlanNotFound})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/meal-plans/7/2025/3/export", nil)

	r := gin.New()
	r.GET("/meal-plans/:school_id/:year/:month/export", h.ExportMonth)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
