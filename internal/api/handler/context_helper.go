package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"signage/backend/internal/service"
	"signage/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 组装当前调用方身份（user_id + 公司成员关系 + 请求语言）。
// 公司信息由 CompanyContext 中间件在每个请求中重新查询后注入。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	companyID, ok := c.Get("company_id")
	if !ok {
		response.Forbidden(c, 10003, "未加入任何公司")
		return service.Caller{}, false
	}
	id, ok := companyID.(int64)
	if !ok || id == 0 {
		response.Forbidden(c, 10003, "未加入任何公司")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:      userID,
		CompanyID:   id,
		CompanyType: c.GetString("company_type"),
		Locale:      c.GetString("locale"),
	}, true
}

// parseID 解析路径参数 :id
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "地点ID无效")
		return 0, false
	}
	return id, true
}
