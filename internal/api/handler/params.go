package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"nutri-assistant/backend/pkg/response"
)

// mustGetSchoolID 解析路径参数 school_id；非法时写入 400 响应并返回 false
func mustGetSchoolID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("school_id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "school_id 无效")
		return 0, false
	}
	return id, true
}

// mustGetYearMonth 解析路径参数 year/month
func mustGetYearMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, 10001, "year 无效")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, 10001, "month 无效")
		return 0, 0, false
	}
	return year, month, true
}
