package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/policy"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// 上下文键，由 middleware.JWTAuth / OptionalAuth 写入
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxCampusID = "campus_id"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetViewer 组装当前工作人员的 policy.Viewer
func MustGetViewer(c *gin.Context) (policy.Viewer, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return policy.Viewer{}, false
	}
	role, ok := c.Get(CtxRole)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Viewer{}, false
	}
	r, ok := role.(string)
	if !ok || r == "" {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Viewer{}, false
	}

	v := policy.Viewer{ID: id, Role: model.Role(r)}
	if campus, ok := c.Get(CtxCampusID); ok {
		if cid, ok := campus.(*int64); ok {
			v.CampusID = cid
		}
	}
	return v, true
}

// OptionalViewer 公开路由上的可选身份；未登录返回 nil，不写响应
func OptionalViewer(c *gin.Context) *policy.Viewer {
	if _, exists := c.Get(CtxUserID); !exists {
		return nil
	}
	v, ok := MustGetViewer(c)
	if !ok {
		return nil
	}
	return &v
}

// tokenMeta 取当前 Token 的 jti 与过期时间（登出用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// parseIDParam 解析路径参数 :id，非法时写入 400
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "ID 格式无效")
		return 0, false
	}
	return id, true
}
